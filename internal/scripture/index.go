package scripture

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

// IndexRoute locates a book's index page and the code its links use.
type IndexRoute struct {
	Version  string
	Path     string
	LinkCode string
}

// IndexRules decides the index route for a book. Most books follow their
// short code; the exception table covers books the source routes differently.
type IndexRules struct {
	version    string
	exceptions map[string]IndexRoute
}

func newIndexRules(doc indexDocument) (IndexRules, error) {
	version := normalizeVersion(doc.Version)
	if version == "" {
		version = DefaultVersion
	}
	if !versionCodePattern.MatchString(version) {
		return IndexRules{}, fmt.Errorf("%w: index version %q", ErrInvalidProfiles, doc.Version)
	}

	rules := IndexRules{
		version:    version,
		exceptions: make(map[string]IndexRoute, len(doc.Exceptions)),
	}
	for _, ex := range doc.Exceptions {
		book := strings.ToLower(strings.TrimSpace(ex.Book))
		path := strings.TrimSpace(ex.Path)
		link := strings.TrimSpace(ex.LinkCode)
		if book == "" || (path == "" && link == "") {
			return IndexRules{}, fmt.Errorf("%w: index exception %+v", ErrInvalidProfiles, ex)
		}
		rules.exceptions[book] = IndexRoute{Version: version, Path: path, LinkCode: link}
	}
	return rules, nil
}

// Version is the translation whose index pages are scraped.
func (r IndexRules) Version() string {
	if r.version == "" {
		return DefaultVersion
	}
	return r.version
}

// Route returns the index route for book.
func (r IndexRules) Route(book domain.BookIdentity) IndexRoute {
	route := IndexRoute{
		Version:  r.Version(),
		Path:     strings.ToLower(book.ShortCode),
		LinkCode: book.ShortCode,
	}
	if ex, ok := r.exceptions[strings.ToLower(book.ShortCode)]; ok {
		if ex.Path != "" {
			route.Path = ex.Path
		}
		if ex.LinkCode != "" {
			route.LinkCode = ex.LinkCode
		}
	}
	return route
}

// LinkPattern matches index links of the form href=".../{version}/{code}/{n}/".
func (route IndexRoute) LinkPattern() *regexp.Regexp {
	return regexp.MustCompile(`href="[^"]*?/` + regexp.QuoteMeta(route.Version) + `/` + regexp.QuoteMeta(route.LinkCode) + `/(\d+)/`)
}

// ExtractIndexNumbers returns every distinct number linked from an index page,
// ascending. A page without matching links yields an empty, non-nil slice.
func ExtractIndexNumbers(markup string, route IndexRoute) []int {
	seen := make(map[int]struct{})
	numbers := make([]int, 0)
	for _, match := range route.LinkPattern().FindAllStringSubmatch(markup, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
