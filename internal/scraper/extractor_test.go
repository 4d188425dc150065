package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placePage = `<!DOCTYPE html>
<html>
<head>
<meta property="og:title" content="Crumb &amp; Co - Google Maps">
<meta name="description" content="Bakery · 4.6 stars · 1,234 reviews">
</head>
<body>
<div data-id="ChIJkW7kUvJZwokRsYyJ0YwmlWk"></div>
<div role="img" aria-label="4.6 stars"></div>
<span aria-label="1,234 reviews"></span>
<button jsaction="pane.wfvdle17.category">Bakery</button>
<div data-item-id="address" aria-label="Address: 123 Larimer St, Denver, CO 80202"></div>
<button data-item-id="phone:tel:+13035551234"></button>
<a data-item-id="authority" href="https://crumbandco.example.com"></a>
</body>
</html>`

func TestExtractPlace_FullRecord(t *testing.T) {
	place, err := ExtractPlace(placePage)
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "Crumb & Co", place.Name)
	assert.Equal(t, "ChIJkW7kUvJZwokRsYyJ0YwmlWk", place.PlaceID)
	assert.Equal(t, "123 Larimer St, Denver, CO 80202", place.Address)
	assert.Equal(t, "4.6", place.Rating)
	assert.Equal(t, "1234", place.ReviewCount)
	assert.Equal(t, []string{"Bakery"}, place.Categories)
	assert.Equal(t, "+13035551234", place.Phone)
	assert.Equal(t, "https://crumbandco.example.com", place.Website)
}

func TestExtractPlace_DescriptionFallback(t *testing.T) {
	page := `<html><head>
<title>Bravo Bakery - Google Maps</title>
<meta name="description" content="Bakery · 4.2 stars · 87 reviews">
</head><body><p>ChIJAbCdEfGhIjKlMnOpQrStUv</p></body></html>`

	place, err := ExtractPlace(page)
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "Bravo Bakery", place.Name)
	assert.Equal(t, "ChIJAbCdEfGhIjKlMnOpQrStUv", place.PlaceID)
	assert.Equal(t, "4.2", place.Rating)
	assert.Equal(t, "87", place.ReviewCount)
	assert.Equal(t, []string{"Bakery"}, place.Categories)
}

func TestExtractPlace_NoUsableRecord(t *testing.T) {
	place, err := ExtractPlace(`<html><head></head><body>Loading…</body></html>`)
	require.NoError(t, err)
	assert.Nil(t, place)
}

func TestExtractPlace_MissingFieldsStayEmpty(t *testing.T) {
	place, err := ExtractPlace(`<html><head>
<meta property="og:title" content="Nameless Diner - Google Maps">
</head><body></body></html>`)
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "Nameless Diner", place.Name)
	assert.Empty(t, place.PlaceID, "missing place id leaves the key empty; persistence drops it")
	assert.Empty(t, place.Rating)
	assert.Empty(t, place.Categories)
}
