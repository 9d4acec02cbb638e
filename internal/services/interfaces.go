package services

import (
	"context"
	"time"

	"github.com/indrapalijama/alkitab-api-v3/internal/catalog"
	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

// BibleService resolves book references and reads scripture from the content source.
type BibleService interface {
	// Find lists the index numbers published for a book.
	Find(ctx context.Context, book string) (domain.BookMetadata, error)
	// Read fetches, parses and cleans one chapter.
	Read(ctx context.Context, cmd ReadCommand) (domain.Chapter, error)
	// Resolve maps a book reference to its canonical identity without any I/O.
	Resolve(book string) (domain.BookIdentity, catalog.MatchTier, error)
	// Versions lists the translations with a known profile.
	Versions() []domain.VersionProfile
}

// ReadCommand selects a chapter. An empty Version reads the base translation.
type ReadCommand struct {
	Book    string
	Chapter int
	Version string
}

// PageFetcher retrieves raw markup from the content source.
type PageFetcher interface {
	Fetch(ctx context.Context, segments ...string) (string, error)
}

// LookupKind names the operation a LookupEvent describes.
type LookupKind string

const (
	LookupKindFind LookupKind = "find"
	LookupKindRead LookupKind = "read"
)

// LookupEvent is emitted after a successful find or read.
type LookupEvent struct {
	ID         string     `json:"id"`
	Kind       LookupKind `json:"kind"`
	Book       string     `json:"book"`
	ShortCode  string     `json:"shortCode"`
	Chapter    int        `json:"chapter,omitempty"`
	Version    string     `json:"version,omitempty"`
	Verses     int        `json:"verses"`
	OccurredAt time.Time  `json:"occurredAt"`
}

// LookupEventPublisher delivers lookup events to downstream consumers.
type LookupEventPublisher interface {
	PublishLookupEvent(ctx context.Context, event LookupEvent) (string, error)
}

// LookupRecorder counts finished lookups.
type LookupRecorder interface {
	ObserveLookup(kind, result string)
}
