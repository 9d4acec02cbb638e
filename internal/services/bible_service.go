package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/indrapalijama/alkitab-api-v3/internal/catalog"
	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
	"github.com/indrapalijama/alkitab-api-v3/internal/scripture"
)

var (
	// ErrInvalidInput covers empty book names, chapters below 1 and malformed versions.
	ErrInvalidInput = errors.New("bible: invalid input")
	// ErrInvalidBook indicates the book reference matched no catalog entry.
	ErrInvalidBook = errors.New("bible: invalid book")
	// ErrNotFound indicates the chapter page carried no verses.
	ErrNotFound = errors.New("bible: not found")
	// ErrExternalAPI indicates the index page could not be retrieved.
	ErrExternalAPI = errors.New("bible: external api error")
	// ErrExternalService indicates the chapter page could not be retrieved.
	ErrExternalService = errors.New("bible: external service error")

	errBibleFetcherRequired = errors.New("bible: page fetcher is required")
)

const defaultPublishTimeout = 2 * time.Second

// BibleServiceDeps wires the collaborators of the bible service. Catalog and
// Profiles default to the built-in tables; Publisher and Metrics are optional.
type BibleServiceDeps struct {
	Catalog        *catalog.Catalog
	Profiles       *scripture.Profiles
	Fetcher        PageFetcher
	Publisher      LookupEventPublisher
	Metrics        LookupRecorder
	Logger         *zap.Logger
	Clock          func() time.Time
	IDGenerator    func() string
	PublishTimeout time.Duration
}

type bibleService struct {
	catalog        *catalog.Catalog
	resolver       *catalog.Resolver
	profiles       *scripture.Profiles
	fetcher        PageFetcher
	publisher      LookupEventPublisher
	metrics        LookupRecorder
	logger         *zap.Logger
	now            func() time.Time
	newID          func() string
	publishTimeout time.Duration
}

// NewBibleService constructs a BibleService from deps.
func NewBibleService(deps BibleServiceDeps) (BibleService, error) {
	if deps.Fetcher == nil {
		return nil, errBibleFetcherRequired
	}

	books := deps.Catalog
	if books == nil {
		books = catalog.Default()
	}
	profiles := deps.Profiles
	if profiles == nil {
		profiles = scripture.DefaultProfiles()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	publishTimeout := deps.PublishTimeout
	if publishTimeout <= 0 {
		publishTimeout = defaultPublishTimeout
	}

	return &bibleService{
		catalog:        books,
		resolver:       catalog.NewResolver(books),
		profiles:       profiles,
		fetcher:        deps.Fetcher,
		publisher:      deps.Publisher,
		metrics:        deps.Metrics,
		logger:         logger.Named("bible"),
		now:            func() time.Time { return clock().UTC() },
		newID:          idGen,
		publishTimeout: publishTimeout,
	}, nil
}

func (s *bibleService) Resolve(book string) (domain.BookIdentity, catalog.MatchTier, error) {
	formatted, err := catalog.FormatBookName(strings.TrimSpace(book))
	if err != nil {
		return domain.BookIdentity{}, catalog.TierNone, fmt.Errorf("%w: book name is required", ErrInvalidInput)
	}
	identity, tier, err := s.resolver.ResolveTier(formatted)
	switch {
	case err == nil:
		return identity, tier, nil
	case errors.Is(err, catalog.ErrEmptyInput):
		return domain.BookIdentity{}, catalog.TierNone, fmt.Errorf("%w: book name is required", ErrInvalidInput)
	default:
		return domain.BookIdentity{}, catalog.TierNone, fmt.Errorf("%w: could not match book %q", ErrInvalidBook, formatted)
	}
}

func (s *bibleService) Versions() []domain.VersionProfile {
	return s.profiles.Versions()
}

func (s *bibleService) Find(ctx context.Context, book string) (domain.BookMetadata, error) {
	identity, _, err := s.Resolve(book)
	if err != nil {
		s.observe(LookupKindFind, err)
		return domain.BookMetadata{}, err
	}

	route := s.profiles.Index().Route(identity)
	markup, err := s.fetcher.Fetch(ctx, route.Version, route.Path)
	if err != nil {
		err = fmt.Errorf("%w: index for %s: %v", ErrExternalAPI, identity.Name, err)
		s.observe(LookupKindFind, err)
		return domain.BookMetadata{}, err
	}

	numbers := scripture.ExtractIndexNumbers(markup, route)
	metadata := domain.BookMetadata{
		Book:       identity.Name,
		TotalVerse: len(numbers),
		Verses:     numbers,
	}

	s.observe(LookupKindFind, nil)
	s.publish(ctx, LookupEvent{
		Kind:      LookupKindFind,
		Book:      identity.Name,
		ShortCode: identity.ShortCode,
		Version:   route.Version,
		Verses:    len(numbers),
	})
	return metadata, nil
}

func (s *bibleService) Read(ctx context.Context, cmd ReadCommand) (domain.Chapter, error) {
	chapter, err := s.read(ctx, cmd)
	s.observe(LookupKindRead, err)
	return chapter, err
}

func (s *bibleService) read(ctx context.Context, cmd ReadCommand) (domain.Chapter, error) {
	identity, _, err := s.Resolve(cmd.Book)
	if err != nil {
		return domain.Chapter{}, err
	}
	if cmd.Chapter < 1 {
		return domain.Chapter{}, fmt.Errorf("%w: chapter must be a positive number", ErrInvalidInput)
	}

	version := strings.ToLower(strings.TrimSpace(cmd.Version))
	if version == "" {
		version = scripture.DefaultVersion
	}
	if !scripture.ValidVersionCode(version) {
		return domain.Chapter{}, fmt.Errorf("%w: version %q is malformed", ErrInvalidInput, cmd.Version)
	}
	profile, known := s.profiles.Lookup(version)
	if !known {
		s.logger.Debug("reading unprofiled version", zap.String("version", version))
	}

	markup, err := s.fetcher.Fetch(ctx, version, identity.ShortCode, strconv.Itoa(cmd.Chapter))
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("%w: %s %d (%s): %v", ErrExternalService, identity.Name, cmd.Chapter, version, err)
	}

	result, err := scripture.Parse(markup, profile)
	if err != nil {
		if errors.Is(err, scripture.ErrNoVerses) {
			return domain.Chapter{}, fmt.Errorf("%w: no verses found in %s %d", ErrNotFound, identity.Name, cmd.Chapter)
		}
		return domain.Chapter{}, fmt.Errorf("bible: parse %s %d: %w", identity.Name, cmd.Chapter, err)
	}

	titles := result.Titles
	if len(titles) == 0 {
		titles = []string{fmt.Sprintf("%s %d", identity.Name, cmd.Chapter)}
	}

	s.publish(ctx, LookupEvent{
		Kind:      LookupKindRead,
		Book:      identity.Name,
		ShortCode: identity.ShortCode,
		Chapter:   cmd.Chapter,
		Version:   version,
		Verses:    len(result.Verses),
	})

	return domain.Chapter{
		Books:       []string{identity.Name},
		Number:      cmd.Chapter,
		Titles:      titles,
		TotalVerses: len(result.Verses),
		Version:     profile.Label(),
		Verses:      result.Verses,
	}, nil
}

func (s *bibleService) observe(kind LookupKind, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveLookup(string(kind), lookupResult(err))
}

func lookupResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidBook):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExternalAPI), errors.Is(err, ErrExternalService):
		return "upstream_error"
	default:
		return "error"
	}
}

// publish hands the event to the publisher on a context detached from the
// request, bounded by publishTimeout. Failures are logged only.
func (s *bibleService) publish(ctx context.Context, event LookupEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = s.newID()
	event.OccurredAt = s.now()

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if _, err := s.publisher.PublishLookupEvent(pubCtx, event); err != nil {
		s.logger.Warn("publish lookup event failed",
			zap.String("event_id", event.ID),
			zap.String("kind", string(event.Kind)),
			zap.String("book", event.Book),
			zap.Error(err),
		)
	}
}
