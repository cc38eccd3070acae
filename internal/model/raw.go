package model

import "time"

// CongressRecord is one raw legislator disclosure row as the ingestion
// collaborator stored it: the transaction joined to its filer and
// filing. The transformer consumes these; it never fetches them.
type CongressRecord struct {
	ID         int64 // Ascending source identifier; rebuild order key
	FilingID   int64
	MemberKey  string // Stable member identifier (bioguide-style)
	SecurityID *int64

	MemberName *string
	Chamber    *string
	Party      *string
	State      *string

	Symbol          *string
	SecurityName    *string
	AssetClass      *string
	Sector          *string
	OwnerType       string
	TransactionType string
	TradeDate       *time.Time
	ReportDate      *time.Time
	AmountMin       *float64
	AmountMax       *float64
	Description     *string

	Source string // Filing source, else chamber
}

// InsiderRecord is one raw corporate-insider disclosure row from the
// vendor feed.
type InsiderRecord struct {
	ID         int64  // Ascending source identifier; rebuild order key
	Source     string // Vendor tag
	ExternalID string // Vendor-stable row identifier

	Symbol          *string
	ReportingCIK    *string
	InsiderName     *string
	TransactionType *string
	Role            *string
	Ownership       *string
	TransactionDate *time.Time
	FilingDate      *time.Time
	Shares          *float64
	Price           *float64

	Payload map[string]any // Verbatim vendor row
}
