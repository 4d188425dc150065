package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sladedigital/places-service/internal/entity"
)

var (
	placeIDPattern = regexp.MustCompile(`ChIJ[0-9A-Za-z_-]{10,}`)
	ratingPattern  = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*star`)
	reviewsPattern = regexp.MustCompile(`([0-9][0-9,]*)\s*review`)
	digitsPattern  = regexp.MustCompile(`[0-9][0-9,]*`)
)

// ExtractPlace parses the markup of a single place page into a Place record.
// It returns nil when the page holds no usable record; a parse problem for an
// individual field leaves that field empty rather than failing the page.
func ExtractPlace(htmlContent string) (*entity.Place, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	place := &entity.Place{
		Name:    extractName(doc),
		PlaceID: placeIDPattern.FindString(htmlContent),
	}
	if place.Name == "" {
		// Interstitial or error page, nothing worth keeping.
		return nil, nil
	}

	if label, ok := doc.Find(`[data-item-id="address"]`).Attr("aria-label"); ok {
		place.Address = strings.TrimSpace(strings.TrimPrefix(label, "Address:"))
	}
	if tel, ok := doc.Find(`[data-item-id^="phone:tel:"]`).Attr("data-item-id"); ok {
		place.Phone = strings.TrimPrefix(tel, "phone:tel:")
	}
	if href, ok := doc.Find(`a[data-item-id="authority"]`).Attr("href"); ok {
		place.Website = href
	}

	if label, ok := doc.Find(`div[role="img"][aria-label*="star"]`).Attr("aria-label"); ok {
		if m := ratingPattern.FindStringSubmatch(label); m != nil {
			place.Rating = m[1]
		}
	}
	doc.Find(`span[aria-label*="review"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label, _ := s.Attr("aria-label")
		if m := reviewsPattern.FindStringSubmatch(label); m != nil {
			place.ReviewCount = strings.ReplaceAll(m[1], ",", "")
			return false
		}
		return true
	})

	doc.Find(`button[jsaction*="category"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			place.Categories = append(place.Categories, text)
		}
	})

	fillFromDescription(doc, place)

	return place, nil
}

// extractName prefers the og:title meta tag and falls back to the document
// title, stripping the trailing "- Google Maps" suffix either way.
func extractName(doc *goquery.Document) string {
	name, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if name == "" {
		name = doc.Find("title").First().Text()
	}
	for _, suffix := range []string{" - Google Maps", " – Google Maps", " · Google Maps"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

// fillFromDescription backfills rating, review count and category from the
// description meta tag, whose content reads like
// "Bakery · 4.6 stars · 1,234 reviews". Fields already found in the DOM win.
func fillFromDescription(doc *goquery.Document, place *entity.Place) {
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	if desc == "" {
		return
	}
	for _, part := range strings.Split(desc, "·") {
		part = strings.TrimSpace(part)
		switch {
		case strings.Contains(part, "star"):
			if place.Rating == "" {
				if m := ratingPattern.FindStringSubmatch(part); m != nil {
					place.Rating = m[1]
				}
			}
		case strings.Contains(part, "review"):
			if place.ReviewCount == "" {
				if n := digitsPattern.FindString(part); n != "" {
					place.ReviewCount = strings.ReplaceAll(n, ",", "")
				}
			}
		default:
			if part != "" && len(place.Categories) == 0 && !strings.ContainsAny(part, "0123456789") {
				place.Categories = append(place.Categories, part)
			}
		}
	}
}
