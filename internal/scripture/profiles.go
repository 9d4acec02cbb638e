package scripture

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

// DefaultVersion is the base translation; it is used when no version is requested.
const DefaultVersion = "tb"

//go:embed profiles.yaml
var embeddedProfiles []byte

// ErrInvalidProfiles is returned when a profile document cannot be used.
var ErrInvalidProfiles = errors.New("scripture: invalid profiles")

var versionCodePattern = regexp.MustCompile(`^[a-z0-9]+$`)

type profileDocument struct {
	Defaults selectorDocument  `yaml:"defaults"`
	Versions []versionDocument `yaml:"versions"`
	Index    indexDocument     `yaml:"index"`
}

type selectorDocument struct {
	Paragraph string `yaml:"paragraph"`
	Title     string `yaml:"title"`
	Reference string `yaml:"reference"`
	Content   string `yaml:"content"`
}

type versionDocument struct {
	Code             string `yaml:"code"`
	Name             string `yaml:"name"`
	selectorDocument `yaml:",inline"`
}

type indexDocument struct {
	Version    string                   `yaml:"version"`
	Exceptions []indexExceptionDocument `yaml:"exceptions"`
}

type indexExceptionDocument struct {
	Book     string `yaml:"book"`
	Path     string `yaml:"path"`
	LinkCode string `yaml:"link_code"`
}

// Profiles is the read-only table of version profiles and index routing rules.
type Profiles struct {
	defaults domain.VersionProfile
	versions map[string]domain.VersionProfile
	order    []string
	index    IndexRules
}

// DefaultProfiles returns the profiles embedded in the binary.
func DefaultProfiles() *Profiles {
	p, err := LoadProfiles(bytes.NewReader(embeddedProfiles))
	if err != nil {
		panic(err)
	}
	return p
}

// LoadProfilesFile reads a profile document from disk.
func LoadProfilesFile(path string) (*Profiles, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scripture: open profiles %s: %w", path, err)
	}
	defer f.Close()
	return LoadProfiles(f)
}

// LoadProfiles parses a YAML profile document and validates every selector.
func LoadProfiles(r io.Reader) (*Profiles, error) {
	var doc profileDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfiles, err)
	}

	defaults := domain.VersionProfile{
		ParagraphSelector: strings.TrimSpace(doc.Defaults.Paragraph),
		TitleSelector:     strings.TrimSpace(doc.Defaults.Title),
		ReferenceSelector: strings.TrimSpace(doc.Defaults.Reference),
		ContentSelector:   strings.TrimSpace(doc.Defaults.Content),
	}
	if err := validateSelectors(defaults); err != nil {
		return nil, fmt.Errorf("%w: defaults: %v", ErrInvalidProfiles, err)
	}

	p := &Profiles{
		defaults: defaults,
		versions: make(map[string]domain.VersionProfile, len(doc.Versions)),
	}

	for _, v := range doc.Versions {
		code := normalizeVersion(v.Code)
		if !versionCodePattern.MatchString(code) {
			return nil, fmt.Errorf("%w: version code %q", ErrInvalidProfiles, v.Code)
		}
		if _, dup := p.versions[code]; dup {
			return nil, fmt.Errorf("%w: duplicate version %q", ErrInvalidProfiles, code)
		}
		profile := domain.VersionProfile{
			Code:              code,
			DisplayName:       strings.TrimSpace(v.Name),
			ParagraphSelector: inherit(v.Paragraph, defaults.ParagraphSelector),
			TitleSelector:     inherit(v.Title, defaults.TitleSelector),
			ReferenceSelector: inherit(v.Reference, defaults.ReferenceSelector),
			ContentSelector:   inherit(v.Content, defaults.ContentSelector),
		}
		if err := validateSelectors(profile); err != nil {
			return nil, fmt.Errorf("%w: version %s: %v", ErrInvalidProfiles, code, err)
		}
		p.versions[code] = profile
		p.order = append(p.order, code)
	}

	index, err := newIndexRules(doc.Index)
	if err != nil {
		return nil, err
	}
	p.index = index

	return p, nil
}

// Lookup returns the profile for code. Unknown codes get the default
// selectors, no display name, and ok=false.
func (p *Profiles) Lookup(code string) (domain.VersionProfile, bool) {
	code = normalizeVersion(code)
	if p == nil {
		return domain.VersionProfile{Code: code}, false
	}
	if profile, ok := p.versions[code]; ok {
		return profile, true
	}
	profile := p.defaults
	profile.Code = code
	return profile, false
}

// Versions lists the known profiles in document order.
func (p *Profiles) Versions() []domain.VersionProfile {
	if p == nil {
		return nil
	}
	out := make([]domain.VersionProfile, 0, len(p.order))
	for _, code := range p.order {
		out = append(out, p.versions[code])
	}
	return out
}

// Index returns the rules used to locate a book's index page.
func (p *Profiles) Index() IndexRules {
	if p == nil {
		return IndexRules{version: DefaultVersion}
	}
	return p.index
}

// ValidVersionCode reports whether code is safe to place in an upstream URL.
func ValidVersionCode(code string) bool {
	return versionCodePattern.MatchString(code)
}

func normalizeVersion(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func inherit(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func validateSelectors(profile domain.VersionProfile) error {
	selectors := []struct {
		name  string
		value string
	}{
		{"paragraph", profile.ParagraphSelector},
		{"title", profile.TitleSelector},
		{"reference", profile.ReferenceSelector},
		{"content", profile.ContentSelector},
	}
	for _, s := range selectors {
		if s.value == "" {
			return fmt.Errorf("%s selector is required", s.name)
		}
		if _, err := cascadia.Compile(s.value); err != nil {
			return fmt.Errorf("%s selector %q: %w", s.name, s.value, err)
		}
	}
	return nil
}
