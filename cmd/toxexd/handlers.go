package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/chemsift/toxex/toxin"
	"github.com/chemsift/toxex/web/fetch"
	"github.com/chemsift/toxex/web/urlscan"
)

// processor is the slice of the pipeline the handlers need.
type processor interface {
	Process(ctx context.Context, text string) (*toxin.Response, error)
	ProcessURL(ctx context.Context, rawURL string) (*toxin.Response, error)
	ProcessText(ctx context.Context, text string) (*toxin.List, error)
}

// pageReader resolves URLs to text or Markdown without extraction.
type pageReader interface {
	Text(ctx context.Context, rawURL string, opts ...fetch.RequestOption) (string, error)
	Markdown(ctx context.Context, rawURL string, opts ...fetch.RequestOption) (string, error)
}

type handler struct {
	pipeline processor
	pages    pageReader
}

func newHandler(p processor, pages pageReader) *handler {
	return &handler{pipeline: p, pages: pages}
}

type textInput struct {
	Text string `json:"text"`
}

type urlInput struct {
	URL string `json:"url"`
}

// POST /extract
// Full pipeline: scan text for URLs, extract from every source.
func (h *handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req textInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected JSON with 'text'")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.pipeline.Process(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "extraction failed: "+err.Error())
		slog.Error("extract error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /parse/url
func (h *handler) handleParseURL(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeURLInput(w, r)
	if !ok {
		return
	}

	resp, err := h.pipeline.ProcessURL(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "url processing failed: "+err.Error())
		slog.Error("parse url error", "url", req.URL, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /parse/text
func (h *handler) handleParseText(w http.ResponseWriter, r *http.Request) {
	var req textInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected JSON with 'text'")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	list, err := h.pipeline.ProcessText(r.Context(), req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "text processing failed: "+err.Error())
		slog.Error("parse text error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /url/text?url=...
func (h *handler) handleURLText(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := queryURL(w, r)
	if !ok {
		return
	}

	text, err := h.pages.Text(r.Context(), rawURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetch failed: "+err.Error())
		slog.Error("url text error", "url", rawURL, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": rawURL, "text": text})
}

// GET /url/markdown?url=...
func (h *handler) handleURLMarkdown(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := queryURL(w, r)
	if !ok {
		return
	}

	md, err := h.pages.Markdown(r.Context(), rawURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "fetch failed: "+err.Error())
		slog.Error("url markdown error", "url", rawURL, "error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": rawURL, "markdown": md})
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func decodeURLInput(w http.ResponseWriter, r *http.Request) (urlInput, bool) {
	var req urlInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: expected JSON with 'url'")
		return req, false
	}
	if !urlscan.Matches(req.URL) {
		writeError(w, http.StatusBadRequest, "url must be a valid http or https URL")
		return req, false
	}
	return req, true
}

func queryURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	rawURL := r.URL.Query().Get("url")
	if !urlscan.Matches(rawURL) {
		writeError(w, http.StatusBadRequest, "url must be a valid http or https URL")
		return "", false
	}
	return rawURL, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
