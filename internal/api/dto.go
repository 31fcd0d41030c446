package api

import (
	"github.com/starford/kyuubi/internal/complete"
	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/parser"
)

// ContentRequest is the request body for PUT /document and POST /transform.
// Content is a pointer so an empty document can be told apart from a
// missing field.
type ContentRequest struct {
	Content *string `json:"content" example:"# Hello\n[[World]] #tag" validate:"required"`
}

// Document is the document snapshot response (aliased from the domain layer).
type Document = models.Document

// Outline is the outline response (aliased from the parser).
type Outline = parser.Outline

// TransformResponse is the result of a stateless transform.
type TransformResponse struct {
	Markdown string `json:"markdown" validate:"required"`
	HTML     string `json:"html" validate:"required"`
}

// CompleteResponse wraps completion candidates.
type CompleteResponse struct {
	Candidates []complete.Candidate `json:"candidates" validate:"required"`
}
