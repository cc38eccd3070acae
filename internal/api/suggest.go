package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tapelabs/disclosure-tape/internal/model"
)

const suggestLimit = 50

// SuggestSymbols handles GET /api/suggest/symbols.
func (h *Handlers) SuggestSymbols(c *gin.Context) {
	prefix := strings.TrimSpace(c.Query("q"))
	if prefix == "" {
		c.JSON(http.StatusOK, SuggestOut{Suggestions: []string{}})
		return
	}

	var eventType string
	switch c.Query("tape") {
	case "":
	case model.TapeCongress:
		eventType = model.EventTypeCongressTrade
	case model.TapeInsider:
		eventType = model.EventTypeInsiderTrade
	case model.TapeAll:
	default:
		c.JSON(http.StatusBadRequest, ErrorOut{Error: "tape allowed values: congress, insider, all"})
		return
	}

	symbols, err := h.events.SuggestSymbols(c.Request.Context(), prefix, eventType, suggestLimit)
	if err != nil {
		h.logger.Error("symbol suggest failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorOut{Error: "suggestion query failed"})
		return
	}
	if symbols == nil {
		symbols = []string{}
	}
	c.JSON(http.StatusOK, SuggestOut{Suggestions: symbols})
}

// SuggestMembers handles GET /api/suggest/members.
func (h *Handlers) SuggestMembers(c *gin.Context) {
	prefix := strings.TrimSpace(c.Query("q"))
	if prefix == "" {
		c.JSON(http.StatusOK, SuggestOut{Suggestions: []string{}})
		return
	}

	members, err := h.events.SuggestMembers(c.Request.Context(), prefix, suggestLimit)
	if err != nil {
		h.logger.Error("member suggest failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorOut{Error: "suggestion query failed"})
		return
	}
	if members == nil {
		members = []string{}
	}
	c.JSON(http.StatusOK, SuggestOut{Suggestions: members})
}
