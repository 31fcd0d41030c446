package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/kyuubi/internal/apperr"
	"github.com/starford/kyuubi/internal/checksum"
	"github.com/starford/kyuubi/internal/complete"
	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/parser"
	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/transform"
)

// ClientIDHeader carries the id of the editor tab that sent an edit.
const ClientIDHeader = "X-Client-ID"

// DefaultExportFilename is the attachment name of an exported document.
const DefaultExportFilename = "document.md"

// DocumentService is the subset of the document holder the API needs.
type DocumentService interface {
	Snapshot() models.Document
	Set(ctx context.Context, text, origin string) models.Document
}

// Renderer turns transformed markdown into HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Handler holds API route handlers.
type Handler struct {
	doc            DocumentService
	renderer       Renderer
	exportFilename string
}

// NewHandler creates a new Handler.
func NewHandler(doc DocumentService, renderer Renderer, exportFilename string) *Handler {
	if exportFilename == "" {
		exportFilename = DefaultExportFilename
	}
	return &Handler{doc: doc, renderer: renderer, exportFilename: exportFilename}
}

// GetDocument handles GET /api/document.
//
//	@Summary		Get the current document snapshot
//	@Tags			document
//	@Produce		json
//	@Success		200	{object}	Document
//	@Success		304	"Not modified"
//	@Security		BearerAuth
//	@Router			/document [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc := h.doc.Snapshot()
	etag := checksum.ETag(doc.Checksum)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutDocument handles PUT /api/document. The body carries the complete text;
// the last write wins.
//
//	@Summary		Replace the document text
//	@Tags			document
//	@Accept			json
//	@Produce		json
//	@Param			X-Client-ID	header		string			false	"Editor tab id"
//	@Param			body		body		ContentRequest	true	"Full document text"
//	@Success		200			{object}	Document
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/document [put]
func (h *Handler) PutDocument(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	origin := r.Header.Get(ClientIDHeader)
	if origin == "" {
		origin = models.OriginAPI
	}

	doc := h.doc.Set(r.Context(), *req.Content, origin)
	w.Header().Set("ETag", checksum.ETag(doc.Checksum))
	writeJSON(w, http.StatusOK, doc)
}

// ExportDocument handles GET /api/document/export. It returns the raw text,
// never the transformed output.
//
//	@Summary		Download the raw document
//	@Tags			document
//	@Produce		text/markdown
//	@Success		200	{string}	string	"Raw markdown"
//	@Security		BearerAuth
//	@Router			/document/export [get]
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	doc := h.doc.Snapshot()
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exportFilename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Raw)))
	w.Header().Set("ETag", checksum.ETag(doc.Checksum))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc.Raw))
}

// Outline handles GET /api/document/outline.
//
//	@Summary		Get the document outline
//	@Tags			document
//	@Produce		json
//	@Success		200	{object}	Outline
//	@Security		BearerAuth
//	@Router			/document/outline [get]
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, parser.Inspect(h.doc.Snapshot().Raw))
}

// Transform handles POST /api/transform. It does not touch the document.
//
//	@Summary		Transform and render arbitrary markdown
//	@Tags			transform
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ContentRequest	true	"Markdown source"
//	@Success		200		{object}	TransformResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/transform [post]
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	markdown := transform.Transform(*req.Content)
	html, err := h.renderer.Render(markdown)
	if err != nil {
		slog.Error("render failed", slog.String("error", err.Error()))
		html = render.Fallback(markdown)
	}
	writeJSON(w, http.StatusOK, TransformResponse{Markdown: markdown, HTML: html})
}

// Complete handles GET /api/complete.
//
//	@Summary		Complete wiki-link targets or tags
//	@Tags			transform
//	@Produce		json
//	@Param			q		query		string	false	"Typed prefix"
//	@Param			kind	query		string	false	"Candidate kind"	Enums(link, tag)
//	@Param			limit	query		int		false	"Max candidates"
//	@Success		200		{object}	CompleteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/complete [get]
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	outline := parser.Inspect(h.doc.Snapshot().Raw)
	candidates, err := complete.Suggest(outline, q.Get("kind"), q.Get("q"), limit)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("kind must be link or tag"))
			return
		}
		slog.Error("complete failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, CompleteResponse{Candidates: candidates})
}
