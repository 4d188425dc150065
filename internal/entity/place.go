package entity

// Place is the denormalized record produced by extracting a single Google
// Maps place page. PlaceID is the natural key; a place without one cannot be
// upserted and is dropped by the persistence layer. Rating and ReviewCount
// are kept as the raw strings found on the page and coerced to integers at
// the persistence boundary, so one bad value never fails a batch.
type Place struct {
	Name        string   `json:"name"`
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"address,omitempty"`
	Rating      string   `json:"rating,omitempty"`
	ReviewCount string   `json:"reviews_count,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Website     string   `json:"website,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Link        string   `json:"link,omitempty"`
}

// HasKey reports whether the place carries a usable natural key.
func (p *Place) HasKey() bool {
	return p.PlaceID != ""
}
