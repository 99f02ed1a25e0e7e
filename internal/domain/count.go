package domain

import "time"

// NewCountRecord carries the fields for one scan-and-save action.
// EntryID may be empty when the scan resolved to nothing and the operator
// has not picked a product manually.
type NewCountRecord struct {
	ScannedCode      string
	EntryID          string
	Status           MatchStatus
	ContextBrand     string
	ContextCategory  Category
	ManualSearchTerm string
	Note             string
	ScannedQR        string
	CountedBy        string
}

// CountRecord is a persisted count. The timestamp is assigned by the
// store, not by this service.
type CountRecord struct {
	ID               string      `json:"id"`
	ScannedCode      string      `json:"scannedCode"`
	EntryID          string      `json:"entryId,omitempty"`
	Status           MatchStatus `json:"status"`
	ContextBrand     string      `json:"contextBrand,omitempty"`
	ContextCategory  Category    `json:"contextCategory,omitempty"`
	ManualSearchTerm string      `json:"manualSearchTerm,omitempty"`
	Note             string      `json:"note,omitempty"`
	ScannedQR        string      `json:"scannedQr,omitempty"`
	CountedBy        string      `json:"countedBy,omitempty"`
	Timestamp        time.Time   `json:"timestamp,omitempty"`
}

// CountStats aggregates today's count records by match status.
type CountStats struct {
	Total      int     `json:"total"`
	Direct     int     `json:"direct"`
	Ambiguous  int     `json:"ambiguous"`
	NotFound   int     `json:"notFound"`
	DirectRate float64 `json:"directRate"` // percentage, one decimal
}
