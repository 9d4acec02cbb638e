package scripture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/indrapalijama/alkitab-api-v3/internal/catalog"
	"github.com/indrapalijama/alkitab-api-v3/internal/testutil"
)

func TestIndexRoutes(t *testing.T) {
	books := catalog.Default()
	rules := DefaultProfiles().Index()

	kejadian, ok := books.ByName("Kejadian")
	require.True(t, ok)
	require.Equal(t, IndexRoute{Version: "tb", Path: "kej", LinkCode: "Kej"}, rules.Route(kejadian))

	mazmur, ok := books.ByName("Mazmur")
	require.True(t, ok)
	require.Equal(t, IndexRoute{Version: "tb", Path: "maz", LinkCode: "Mzm"}, rules.Route(mazmur))
}

func TestExtractIndexNumbers(t *testing.T) {
	route := IndexRoute{Version: "tb", Path: "kej", LinkCode: "Kej"}
	page := testutil.IndexPage("tb", "Kej", 3, 1, 2, 2, 10) +
		testutil.IndexPage("tb", "Kel", 99) +
		testutil.IndexPage("kjv", "Kej", 77)

	require.Equal(t, []int{1, 2, 3, 10}, ExtractIndexNumbers(page, route))
}

func TestExtractIndexNumbersMazmurException(t *testing.T) {
	mazmur, ok := catalog.Default().ByName("Mazmur")
	require.True(t, ok)
	route := DefaultProfiles().Index().Route(mazmur)

	page := testutil.IndexPage("tb", "Mzm", 1, 150, 23) + testutil.IndexPage("tb", "Maz", 5)
	require.Equal(t, []int{1, 23, 150}, ExtractIndexNumbers(page, route))
}

func TestExtractIndexNumbersEmpty(t *testing.T) {
	got := ExtractIndexNumbers("<html><body>kosong</body></html>", IndexRoute{Version: "tb", LinkCode: "Kej"})
	require.NotNil(t, got)
	require.Empty(t, got)
}
