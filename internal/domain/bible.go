package domain

// BookIdentity is the canonical identity every book reference resolves to.
type BookIdentity struct {
	// Name is the canonical Indonesian book name (e.g. "Kejadian").
	Name string
	// EnglishName is the English book name (e.g. "Genesis").
	EnglishName string
	// ShortCode is the three character code used by the content source (e.g. "Kej", "1Sa").
	ShortCode string
	// Aliases lists alternate abbreviations accepted alongside ShortCode.
	Aliases []string
}

// Verse is a single numbered verse with cleaned text.
type Verse struct {
	Number  int
	Content string
}

// Chapter is the assembled result of reading one chapter in a given version.
type Chapter struct {
	Books       []string
	Number      int
	Titles      []string
	TotalVerses int
	Version     *string
	Verses      []Verse
}

// BookMetadata lists the index numbers published for a book.
type BookMetadata struct {
	Book       string
	TotalVerse int
	Verses     []int
}

// VersionProfile describes how a translation's chapter markup is structured.
type VersionProfile struct {
	Code              string
	DisplayName       string
	ParagraphSelector string
	TitleSelector     string
	ReferenceSelector string
	ContentSelector   string
}

// Label returns the display name, or nil when the version has none.
func (p VersionProfile) Label() *string {
	if p.DisplayName == "" {
		return nil
	}
	label := p.DisplayName
	return &label
}
