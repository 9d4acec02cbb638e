package catalog

import (
	"errors"
	"strings"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

var (
	// ErrEmptyInput indicates the book reference was empty after trimming.
	ErrEmptyInput = errors.New("catalog: empty book name")
	// ErrBookNotFound indicates no tier matched the book reference.
	ErrBookNotFound = errors.New("catalog: book not found")
)

// MatchTier identifies which resolution tier produced a match.
type MatchTier int

const (
	TierNone MatchTier = iota
	TierShortCode
	TierName
	TierEnglishName
	TierPrefix
	TierSubstring
)

func (t MatchTier) String() string {
	switch t {
	case TierShortCode:
		return "short_code"
	case TierName:
		return "name"
	case TierEnglishName:
		return "english_name"
	case TierPrefix:
		return "prefix"
	case TierSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Resolver maps free-text book references onto catalog identities.
type Resolver struct {
	catalog *Catalog
}

// NewResolver builds a resolver over the supplied catalog.
func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve returns the identity for input, trying each tier in order and
// stopping at the first one that matches.
func (r *Resolver) Resolve(input string) (domain.BookIdentity, error) {
	book, _, err := r.ResolveTier(input)
	return book, err
}

// ResolveTier is Resolve that also reports the matching tier.
func (r *Resolver) ResolveTier(input string) (domain.BookIdentity, MatchTier, error) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return domain.BookIdentity{}, TierNone, ErrEmptyInput
	}
	if r == nil || r.catalog == nil {
		return domain.BookIdentity{}, TierNone, ErrBookNotFound
	}

	if book, ok := r.catalog.ByShortCode(needle); ok {
		return book, TierShortCode, nil
	}
	if book, ok := r.catalog.ByName(needle); ok {
		return book, TierName, nil
	}
	if book, ok := r.catalog.ByEnglishName(needle); ok {
		return book, TierEnglishName, nil
	}

	for _, book := range r.catalog.books {
		english := strings.ToLower(book.EnglishName)
		if strings.HasPrefix(english, needle) || strings.HasPrefix(needle, english) {
			return cloneBook(book), TierPrefix, nil
		}
	}
	for _, book := range r.catalog.books {
		english := strings.ToLower(book.EnglishName)
		if strings.Contains(english, needle) || strings.Contains(needle, english) {
			return cloneBook(book), TierSubstring, nil
		}
	}

	return domain.BookIdentity{}, TierNone, ErrBookNotFound
}
