package scripture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
	"github.com/indrapalijama/alkitab-api-v3/internal/testutil"
)

func tbProfile(t *testing.T) domain.VersionProfile {
	t.Helper()
	profile, ok := DefaultProfiles().Lookup("tb")
	require.True(t, ok)
	return profile
}

func TestParseTitlesAndRanges(t *testing.T) {
	page := testutil.ChapterPage(
		testutil.PageVerse{Title: "Allah menciptakan langit dan bumi", Number: 1, Content: "Pada mulanya Allah menciptakan langit dan bumi."},
		testutil.PageVerse{Number: 2, Content: "Bumi belum berbentuk dan kosong."},
		testutil.PageVerse{Number: 3, Content: "Berfirmanlah Allah: &quot;Jadilah terang.&quot;"},
		testutil.PageVerse{Title: "Hari kedua", Number: 4, Content: "Allah melihat bahwa terang itu baik."},
		testutil.PageVerse{Number: 5, Content: "Dan Allah menamai terang itu siang."},
	)

	result, err := Parse(page, tbProfile(t))
	require.NoError(t, err)
	require.Equal(t, []string{
		"Allah menciptakan langit dan bumi (1-3)",
		"Hari kedua (4-5)",
	}, result.Titles)
	require.Len(t, result.Verses, 5)
	for i, v := range result.Verses {
		require.Equal(t, i+1, v.Number)
		require.NotEmpty(t, v.Content)
	}
	require.Equal(t, "Pada mulanya Allah menciptakan langit dan bumi.", result.Verses[0].Content)
}

func TestParseWithoutTitles(t *testing.T) {
	page := testutil.ChapterPage(
		testutil.PageVerse{Number: 1, Content: "Kata-kata Amsal Salomo."},
		testutil.PageVerse{Number: 2, Content: "untuk mengetahui hikmat."},
	)

	result, err := Parse(page, tbProfile(t))
	require.NoError(t, err)
	require.Empty(t, result.Titles)
	require.Len(t, result.Verses, 2)
}

func TestParseZeroVerses(t *testing.T) {
	tests := map[string]string{
		"no paragraphs":   "<html><body><div>Pasal tidak ditemukan</div></body></html>",
		"no reference":    "<html><body><p>Hanya teks</p><p>lainnya</p></body></html>",
		"empty contents":  testutil.ChapterPage(testutil.PageVerse{Number: 1, Content: "   "}),
		"empty document":  "",
		"title only page": `<p><span class="paragraphtitle">Judul</span></p>`,
	}

	for name, page := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := Parse(page, tbProfile(t))
			require.True(t, errors.Is(err, ErrNoVerses), "err=%v", err)
			require.Empty(t, result.Verses)
		})
	}
}

func TestParseFallsBackToParagraphText(t *testing.T) {
	page := `<html><body>
<p><span class="reftext">1</span><b>In the beginning</b><i>God created</i></p>
<p><span class="reftext">2</span><span data-dur="1">And the earth < 776 > was</span></p>
</body></html>`

	profile, ok := DefaultProfiles().Lookup("kjv")
	require.True(t, ok)

	result, err := Parse(page, profile)
	require.NoError(t, err)
	require.Equal(t, []domain.Verse{
		{Number: 1, Content: "In the beginning God created"},
		{Number: 2, Content: "And the earth was"},
	}, result.Verses)
}

func TestParseVerseNumberFallbacks(t *testing.T) {
	tests := []struct {
		marker string
		want   int
	}{
		{marker: "7 ", want: 7},
		{marker: "12.", want: 12},
		{marker: "ayat 9", want: 9},
		{marker: "v1a2", want: 12},
		{marker: "-", want: 1},
		{marker: "0 ", want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.marker, func(t *testing.T) {
			require.Equal(t, tc.want, parseVerseNumber(tc.marker))
		})
	}
}

func TestParseTitleRangeNeedsAcceptedVerse(t *testing.T) {
	page := `<html><body>
<p><span class="paragraphtitle">Pembukaan</span><span class="reftext">1</span><span data-dur="1">Isi ayat satu</span></p>
<p><span class="paragraphtitle">Kosong</span><span class="reftext">2</span><span data-dur="1">  </span></p>
<p><span class="paragraphtitle">Penutup</span><span class="reftext">3</span><span data-dur="1">Isi ayat tiga</span></p>
</body></html>`

	result, err := Parse(page, tbProfile(t))
	require.NoError(t, err)
	require.Equal(t, []string{"Pembukaan (1-1)", "Penutup (3-3)"}, result.Titles)
	require.Len(t, result.Verses, 2)
	require.Equal(t, 3, result.Verses[1].Number)
}

func TestParseCleansEntityMarkup(t *testing.T) {
	page := `<html><body>
<p><span class="paragraphtitle">Allah&nbsp;menciptakan langit</span><span class="reftext">1&nbsp;</span><span data-dur="1">1&nbsp;Pada&nbsp;&nbsp;mulanya Allah berfirman: &quot;Jadilah terang.&quot;</span></p>
<p><span class="reftext">2</span><span data-dur="1">&nbsp;Bumi &amp;quot;kosong&amp;quot;&nbsp;&nbsp;dan gelap&nbsp;</span></p>
</body></html>`

	result, err := Parse(page, tbProfile(t))
	require.NoError(t, err)
	require.Equal(t, []domain.Verse{
		{Number: 1, Content: `Pada mulanya Allah berfirman: "Jadilah terang."`},
		{Number: 2, Content: `Bumi "kosong" dan gelap`},
	}, result.Verses)
	require.Len(t, result.Titles, 1)
	require.Contains(t, result.Titles[0], "(1-2)")
}

func TestParseRejectsInvalidSelector(t *testing.T) {
	profile := tbProfile(t)
	profile.ContentSelector = "span[["

	_, err := Parse(testutil.ChapterPage(testutil.PageVerse{Number: 1, Content: "x"}), profile)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNoVerses))
}
