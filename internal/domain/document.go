package domain

import "time"

// Document is a source text supplied by the document-management layer.
// Immutable once chunked except for the soft-delete flag.
type Document struct {
	ID        string
	Title     string
	Source    string
	RawText   string
	Deleted   bool
	CreatedAt time.Time
}
