package scripture

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

// ErrNoVerses is returned when a document contains no usable verse.
var ErrNoVerses = errors.New("scripture: no verses found in chapter")

// ParseResult holds the verses and section titles of one chapter page.
type ParseResult struct {
	Verses []domain.Verse
	Titles []string
}

type selectors struct {
	paragraph cascadia.Selector
	title     cascadia.Selector
	reference cascadia.Selector
	content   cascadia.Selector
}

func compileSelectors(profile domain.VersionProfile) (selectors, error) {
	var s selectors
	var err error
	if s.paragraph, err = cascadia.Compile(profile.ParagraphSelector); err != nil {
		return s, fmt.Errorf("scripture: paragraph selector: %w", err)
	}
	if s.title, err = cascadia.Compile(profile.TitleSelector); err != nil {
		return s, fmt.Errorf("scripture: title selector: %w", err)
	}
	if s.reference, err = cascadia.Compile(profile.ReferenceSelector); err != nil {
		return s, fmt.Errorf("scripture: reference selector: %w", err)
	}
	if s.content, err = cascadia.Compile(profile.ContentSelector); err != nil {
		return s, fmt.Errorf("scripture: content selector: %w", err)
	}
	return s, nil
}

// sectionTracker accumulates "title (start-end)" ranges while paragraphs are walked.
type sectionTracker struct {
	titles []string
	open   bool
	title  string
	start  int
	last   int
}

// openTitle also forgets the last accepted verse, so a title whose verses were
// all skipped is dropped rather than emitted with a stale range like "(2-1)".
func (t *sectionTracker) openTitle(title string) {
	t.close()
	t.open = true
	t.title = title
	t.start = 0
	t.last = 0
}

func (t *sectionTracker) reference(verse int) {
	if t.open && t.start == 0 {
		t.start = verse
	}
}

func (t *sectionTracker) accepted(verse int) {
	t.last = verse
}

func (t *sectionTracker) close() {
	if t.open && t.start > 0 && t.last > 0 {
		t.titles = append(t.titles, fmt.Sprintf("%s (%d-%d)", t.title, t.start, t.last))
	}
	t.open = false
	t.title = ""
	t.start = 0
}

// Parse walks the chapter markup and returns its cleaned verses and titled
// verse ranges in document order. A document without verses yields
// ErrNoVerses; the caller decides on default titles.
func Parse(markup string, profile domain.VersionProfile) (ParseResult, error) {
	sel, err := compileSelectors(profile)
	if err != nil {
		return ParseResult{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ParseResult{}, fmt.Errorf("scripture: parse markup: %w", err)
	}

	var (
		tracker sectionTracker
		verses  []domain.Verse
	)

	doc.FindMatcher(sel.paragraph).Each(func(_ int, p *goquery.Selection) {
		if title := strings.TrimSpace(p.FindMatcher(sel.title).First().Text()); title != "" {
			tracker.openTitle(title)
		}

		ref := p.FindMatcher(sel.reference).First()
		if ref.Length() == 0 {
			return
		}
		number := parseVerseNumber(firstText(ref))
		tracker.reference(number)

		var content string
		if node := p.FindMatcher(sel.content).First(); node.Length() > 0 {
			content = strings.TrimSpace(node.Text())
		} else {
			content = strings.TrimSpace(joinedText(p))
		}
		if content == "" {
			return
		}

		verses = append(verses, domain.Verse{
			Number:  number,
			Content: Clean(content, profile.Code),
		})
		tracker.accepted(number)
	})
	tracker.close()

	if len(verses) == 0 {
		return ParseResult{Titles: tracker.titles}, ErrNoVerses
	}
	return ParseResult{Verses: verses, Titles: tracker.titles}, nil
}

// parseVerseNumber reads the leading number of a reference marker, falling
// back to every digit in the text and finally to verse 1.
func parseVerseNumber(text string) int {
	if m := verseNumberPrefix.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
		return 1
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		return n
	}
	return 1
}

// firstText returns the first text node beneath the selection.
func firstText(s *goquery.Selection) string {
	for _, node := range s.Nodes {
		if text, ok := findText(node); ok {
			return text
		}
	}
	return ""
}

func findText(n *html.Node) (string, bool) {
	if n.Type == html.TextNode {
		return n.Data, true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text, ok := findText(c); ok {
			return text, true
		}
	}
	return "", false
}

// joinedText concatenates the text nodes beneath the selection with single
// spaces so adjacent inline elements do not run together.
func joinedText(s *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range s.Nodes {
		walk(node)
	}
	return strings.Join(parts, " ")
}
