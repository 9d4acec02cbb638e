package testutil

import (
	"fmt"
	"html"
	"strings"
)

// PageVerse is one verse paragraph in a generated chapter page.
type PageVerse struct {
	// Title opens a new section before this verse when non-empty.
	Title   string
	Number  int
	Content string
}

// ChapterPage renders a chapter page in the markup the content source uses:
// one <p> per verse with a span.reftext marker and a span[data-dur] body.
func ChapterPage(verses ...PageVerse) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>chapter</title></head><body><div class=\"chapter\">\n")
	for _, v := range verses {
		b.WriteString("<p>")
		if v.Title != "" {
			fmt.Fprintf(&b, `<span class="paragraphtitle">%s</span>`, html.EscapeString(v.Title))
		}
		fmt.Fprintf(&b, `<span class="reftext"><a href="#v%d">%d</a></span>`, v.Number, v.Number)
		fmt.Fprintf(&b, `<span data-dur="%d">%s</span>`, v.Number*1000, html.EscapeString(v.Content))
		b.WriteString("</p>\n")
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

// IndexPage renders a book index page linking each number under
// /{version}/{code}/{n}/.
func IndexPage(version, code string, numbers ...int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body><ul>\n")
	for _, n := range numbers {
		fmt.Fprintf(&b, `<li><a href="https://alkitab.example/%s/%s/%d/">%d</a></li>`+"\n", version, code, n, n)
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}
