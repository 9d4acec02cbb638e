package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/httpx"
	"github.com/indrapalijama/alkitab-api-v3/internal/platform/requestctx"
	"github.com/indrapalijama/alkitab-api-v3/internal/services"
)

// BibleHandlers exposes the find and read endpoints.
type BibleHandlers struct {
	bible services.BibleService
}

// NewBibleHandlers constructs handlers backed by svc.
func NewBibleHandlers(svc services.BibleService) *BibleHandlers {
	return &BibleHandlers{bible: svc}
}

// Routes registers the bible endpoints against r.
func (h *BibleHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/find/{book}", h.find)
	r.Get("/read/{book}/{chapter}", h.read)
}

type bookMetadataPayload struct {
	Book       string `json:"book"`
	TotalVerse int    `json:"total_verse"`
	Verses     []int  `json:"verses"`
}

type versePayload struct {
	Verse   int    `json:"verse"`
	Content string `json:"content"`
}

type chapterPayload struct {
	Book        []string       `json:"book"`
	Chapter     int            `json:"chapter"`
	Title       []string       `json:"title"`
	TotalVerses int            `json:"total_verses"`
	Version     *string        `json:"version"`
	Verses      []versePayload `json:"verses"`
}

func (h *BibleHandlers) find(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bible == nil {
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "bible service unavailable", http.StatusInternalServerError))
		return
	}

	metadata, err := h.bible.Find(ctx, strings.TrimSpace(chi.URLParam(r, "book")))
	if err != nil {
		writeBibleError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newBookMetadataPayload(metadata))
}

func (h *BibleHandlers) read(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.bible == nil {
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "bible service unavailable", http.StatusInternalServerError))
		return
	}

	chapter, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "chapter")))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_input", "chapter must be a number", http.StatusBadRequest))
		return
	}

	result, err := h.bible.Read(ctx, services.ReadCommand{
		Book:    strings.TrimSpace(chi.URLParam(r, "book")),
		Chapter: chapter,
		Version: r.URL.Query().Get("version"),
	})
	if err != nil {
		writeBibleError(ctx, w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, newChapterPayload(result))
}

func newBookMetadataPayload(metadata domain.BookMetadata) bookMetadataPayload {
	verses := metadata.Verses
	if verses == nil {
		verses = []int{}
	}
	return bookMetadataPayload{
		Book:       metadata.Book,
		TotalVerse: metadata.TotalVerse,
		Verses:     verses,
	}
}

func newChapterPayload(chapter domain.Chapter) chapterPayload {
	verses := make([]versePayload, 0, len(chapter.Verses))
	for _, verse := range chapter.Verses {
		verses = append(verses, versePayload{Verse: verse.Number, Content: verse.Content})
	}
	return chapterPayload{
		Book:        chapter.Books,
		Chapter:     chapter.Number,
		Title:       chapter.Titles,
		TotalVerses: chapter.TotalVerses,
		Version:     chapter.Version,
		Verses:      verses,
	}
}

// writeBibleError maps service sentinels onto the error envelope. Upstream
// failures are reported generically; the cause is logged only.
func writeBibleError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_input", publicMessage(err), http.StatusBadRequest))
	case errors.Is(err, services.ErrInvalidBook):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_book", publicMessage(err), http.StatusBadRequest))
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", publicMessage(err), http.StatusNotFound))
	case errors.Is(err, services.ErrExternalAPI):
		requestctx.Logger(ctx).Warn("content source index fetch failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("external_api_error", "failed to fetch data from external source", http.StatusBadGateway))
	case errors.Is(err, services.ErrExternalService):
		requestctx.Logger(ctx).Warn("content source chapter fetch failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("external_service_error", "external content service unavailable", http.StatusBadGateway))
	default:
		requestctx.Logger(ctx).Error("bible request failed", zap.Error(err))
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}

// publicMessage strips the sentinel prefix, leaving the caller-facing detail.
func publicMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{services.ErrInvalidInput, services.ErrInvalidBook, services.ErrNotFound} {
		if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return rest
		}
	}
	return strings.TrimPrefix(msg, "bible: ")
}
