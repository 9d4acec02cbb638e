package catalog

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func permuteCase(value string) []string {
	alternating := []rune(value)
	for i, r := range alternating {
		if i%2 == 0 {
			alternating[i] = unicode.ToUpper(r)
		} else {
			alternating[i] = unicode.ToLower(r)
		}
	}
	return []string{
		value,
		strings.ToLower(value),
		strings.ToUpper(value),
		string(alternating),
		"  " + value + "\t",
	}
}

func TestResolveEveryCatalogEntry(t *testing.T) {
	t.Parallel()

	c := Default()
	resolver := NewResolver(c)

	for _, book := range c.Books() {
		inputs := []string{book.ShortCode, book.Name, book.EnglishName}
		inputs = append(inputs, book.Aliases...)
		for _, input := range inputs {
			for _, variant := range permuteCase(input) {
				got, err := resolver.Resolve(variant)
				require.NoError(t, err, "resolve %q", variant)
				require.Equal(t, book.Name, got.Name, "resolve %q", variant)
			}
		}
	}
}

func TestResolveTiers(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Default())

	tests := []struct {
		input string
		want  string
		tier  MatchTier
	}{
		{input: "kej", want: "Kejadian", tier: TierShortCode},
		{input: "MZM", want: "Mazmur", tier: TierShortCode},
		{input: "ayb", want: "Ayub", tier: TierShortCode},
		{input: "why", want: "Wahyu", tier: TierShortCode},
		{input: "Kejadian", want: "Kejadian", tier: TierName},
		{input: "hakim-hakim", want: "Hakim-hakim", tier: TierName},
		{input: "Genesis", want: "Kejadian", tier: TierEnglishName},
		{input: "song of solomon", want: "Kidung Agung", tier: TierEnglishName},
		{input: "gene", want: "Kejadian", tier: TierPrefix},
		{input: "jo", want: "Yosua", tier: TierPrefix},
		{input: "revelations", want: "Wahyu", tier: TierPrefix},
		{input: "genesis 1", want: "Kejadian", tier: TierPrefix},
		{input: "salm", want: "Mazmur", tier: TierSubstring},
		{input: "chronicles", want: "1 Tawarikh", tier: TierSubstring},
		{input: "the book of jonah", want: "Yunus", tier: TierSubstring},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, tier, err := resolver.ResolveTier(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Name)
			require.Equal(t, tc.tier, tier)
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		resolver := NewResolver(Default())
		got, err := resolver.Resolve("j")
		require.NoError(t, err)
		require.Equal(t, "Yosua", got.Name)

		got, err = resolver.Resolve("an")
		require.NoError(t, err)
		require.Equal(t, "Daniel", got.Name)
	}
}

func TestResolveFailures(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Default())

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := resolver.Resolve(input)
		require.ErrorIs(t, err, ErrEmptyInput)
	}

	for _, input := range []string{"InvalidBook", "zzz", "kitab"} {
		_, err := resolver.Resolve(input)
		require.ErrorIs(t, err, ErrBookNotFound, "input %q", input)
	}

	var nilResolver *Resolver
	_, err := nilResolver.Resolve("kej")
	require.ErrorIs(t, err, ErrBookNotFound)
}

func TestFormatBookName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"genesis":     "Genesis",
		"GENESIS":     "Genesis",
		"gEnEsIs":     "Genesis",
		"1 samuel":    "1 samuel",
		"kISAH PARA":  "Kisah para",
		"é":           "É",
		"hakim-HAKIM": "Hakim-hakim",
	}
	for input, want := range tests {
		got, err := FormatBookName(input)
		require.NoError(t, err)
		require.Equal(t, want, got, "format %q", input)
	}

	_, err := FormatBookName("")
	require.ErrorIs(t, err, ErrEmptyInput)
}
