package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

// ErrInvalidCatalog is returned when a book table violates the catalog invariants.
var ErrInvalidCatalog = errors.New("catalog: invalid book table")

// Catalog is the immutable table of canonical book identities. Ordered
// operations walk books; exact lookups use the lower-cased key maps.
type Catalog struct {
	books     []domain.BookIdentity
	byCode    map[string]int
	byName    map[string]int
	byEnglish map[string]int
}

// New validates the supplied entries and builds a catalog preserving their order.
func New(entries []domain.BookIdentity) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no books", ErrInvalidCatalog)
	}

	c := &Catalog{
		books:     make([]domain.BookIdentity, 0, len(entries)),
		byCode:    make(map[string]int, len(entries)),
		byName:    make(map[string]int, len(entries)),
		byEnglish: make(map[string]int, len(entries)),
	}

	for i, entry := range entries {
		book := cloneBook(entry)
		book.Name = strings.TrimSpace(book.Name)
		book.EnglishName = strings.TrimSpace(book.EnglishName)
		book.ShortCode = strings.TrimSpace(book.ShortCode)
		if book.Name == "" || book.EnglishName == "" || book.ShortCode == "" {
			return nil, fmt.Errorf("%w: entry %d has empty fields", ErrInvalidCatalog, i)
		}

		if err := insertUnique(c.byCode, key(book.ShortCode), i, "short code"); err != nil {
			return nil, err
		}
		for _, alias := range book.Aliases {
			if err := insertUnique(c.byCode, key(alias), i, "alias"); err != nil {
				return nil, err
			}
		}
		if err := insertUnique(c.byName, key(book.Name), i, "name"); err != nil {
			return nil, err
		}
		if err := insertUnique(c.byEnglish, key(book.EnglishName), i, "english name"); err != nil {
			return nil, err
		}
		c.books = append(c.books, book)
	}

	return c, nil
}

// Default returns the catalog backed by the built-in 66 book table.
func Default() *Catalog {
	c, err := New(canonicalBooks)
	if err != nil {
		panic(err)
	}
	return c
}

// Len reports the number of books in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.books)
}

// Books returns a copy of every identity in canonical order.
func (c *Catalog) Books() []domain.BookIdentity {
	if c == nil {
		return nil
	}
	out := make([]domain.BookIdentity, 0, len(c.books))
	for _, book := range c.books {
		out = append(out, cloneBook(book))
	}
	return out
}

// ByShortCode finds a book by short code or registered alias, ignoring case.
func (c *Catalog) ByShortCode(code string) (domain.BookIdentity, bool) {
	return c.lookup(c.byCode, code)
}

// ByName finds a book by its canonical Indonesian name, ignoring case.
func (c *Catalog) ByName(name string) (domain.BookIdentity, bool) {
	return c.lookup(c.byName, name)
}

// ByEnglishName finds a book by its English name, ignoring case.
func (c *Catalog) ByEnglishName(name string) (domain.BookIdentity, bool) {
	return c.lookup(c.byEnglish, name)
}

func (c *Catalog) lookup(index map[string]int, value string) (domain.BookIdentity, bool) {
	if c == nil {
		return domain.BookIdentity{}, false
	}
	i, ok := index[key(value)]
	if !ok {
		return domain.BookIdentity{}, false
	}
	return cloneBook(c.books[i]), true
}

func insertUnique(index map[string]int, k string, pos int, field string) error {
	if k == "" {
		return fmt.Errorf("%w: entry %d has an empty %s", ErrInvalidCatalog, pos, field)
	}
	if existing, ok := index[k]; ok && existing != pos {
		return fmt.Errorf("%w: %s %q used by entries %d and %d", ErrInvalidCatalog, field, k, existing, pos)
	}
	index[k] = pos
	return nil
}

func key(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func cloneBook(book domain.BookIdentity) domain.BookIdentity {
	if len(book.Aliases) > 0 {
		aliases := make([]string, len(book.Aliases))
		copy(aliases, book.Aliases)
		book.Aliases = aliases
	}
	return book
}
