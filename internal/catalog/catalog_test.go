package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indrapalijama/alkitab-api-v3/internal/domain"
)

func TestDefaultCatalogInvariants(t *testing.T) {
	t.Parallel()

	c := Default()
	require.Equal(t, 66, c.Len())

	books := c.Books()
	require.Equal(t, "Kejadian", books[0].Name)
	require.Equal(t, "Wahyu", books[len(books)-1].Name)

	codes := make(map[string]struct{})
	names := make(map[string]struct{})
	for _, book := range books {
		code := strings.ToLower(book.ShortCode)
		_, dup := codes[code]
		require.False(t, dup, "duplicate short code %s", book.ShortCode)
		codes[code] = struct{}{}

		_, dup = names[strings.ToLower(book.Name)]
		require.False(t, dup, "duplicate name %s", book.Name)
		names[strings.ToLower(book.Name)] = struct{}{}
	}
}

func TestCatalogBooksReturnsCopies(t *testing.T) {
	t.Parallel()

	c := Default()
	books := c.Books()
	books[0].Name = "mutated"
	for i := range books {
		if books[i].ShortCode == "Maz" {
			books[i].Aliases[0] = "xxx"
		}
	}

	got, ok := c.ByShortCode("kej")
	require.True(t, ok)
	require.Equal(t, "Kejadian", got.Name)

	psalms, ok := c.ByShortCode("mzm")
	require.True(t, ok)
	require.Equal(t, []string{"mzm"}, psalms.Aliases)
}

func TestCatalogExactLookupsIgnoreCase(t *testing.T) {
	t.Parallel()

	c := Default()

	book, ok := c.ByShortCode("1SA")
	require.True(t, ok)
	require.Equal(t, "1 Samuel", book.Name)

	book, ok = c.ByName("kisah para rasul")
	require.True(t, ok)
	require.Equal(t, "Kis", book.ShortCode)

	book, ok = c.ByEnglishName("SONG OF SOLOMON")
	require.True(t, ok)
	require.Equal(t, "Kidung Agung", book.Name)

	_, ok = c.ByName("genesis")
	require.False(t, ok)
}

func TestNewRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	cases := map[string][]domain.BookIdentity{
		"empty": nil,
		"missing code": {
			{Name: "Kejadian", EnglishName: "Genesis"},
		},
		"duplicate code": {
			{Name: "Kejadian", EnglishName: "Genesis", ShortCode: "Kej"},
			{Name: "Keluaran", EnglishName: "Exodus", ShortCode: "KEJ"},
		},
		"alias collides with code": {
			{Name: "Kejadian", EnglishName: "Genesis", ShortCode: "Kej"},
			{Name: "Keluaran", EnglishName: "Exodus", ShortCode: "Kel", Aliases: []string{"kej"}},
		},
		"duplicate name": {
			{Name: "Kejadian", EnglishName: "Genesis", ShortCode: "Kej"},
			{Name: "kejadian", EnglishName: "Exodus", ShortCode: "Kel"},
		},
	}

	for name, entries := range cases {
		entries := entries
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := New(entries)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}
