// Package models defines the domain types for Kyuubi.
package models

import "time"

// Document is a read-only snapshot of the single edited note. Raw is the
// canonical source; Rendered and HTML are derived from it and never stored.
type Document struct {
	ID        string    `json:"id"`
	Raw       string    `json:"raw"`
	Rendered  string    `json:"rendered"`
	HTML      string    `json:"html"`
	Revision  uint64    `json:"revision"`
	Checksum  string    `json:"checksum"`
	Origin    string    `json:"origin,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Origins for edits that do not come from a browser tab.
const (
	OriginLoad = "load"
	OriginAPI  = "api"
	OriginDisk = "disk"
	OriginMCP  = "mcp"
	OriginCLI  = "cli"
)
