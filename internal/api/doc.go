// Package api exposes the HTTP surface: event listings, unusual
// signal queries, prefix suggestions, and admin maintenance triggers.
//
// Handlers consume narrow store and detector interfaces so they test
// without a database. Structurally invalid input maps to 400 with a
// descriptive reason; filters that legitimately match nothing return
// empty results, never errors.
package api
