// Package selection holds the document catalog and the per-session
// selection set.
package selection

import (
	"grundbuch-workers/internal/models"
)

// Catalog is the fixed document offer. Prices are euro cents; the order
// here is the display order.
var Catalog = []models.Document{
	{ID: "grundbuchauszug", Name: "Grundbuchauszug", PriceCents: 2990},
	{ID: "liegenschaftskarte", Name: "Liegenschaftskarte", PriceCents: 2990},
	{ID: "teilungserklaerung", Name: "Teilungserklärung", PriceCents: 2490},
	{ID: "altlastenauskunft", Name: "Altlastenverzeichnis", PriceCents: 2490},
	{ID: "baulasten", Name: "Baulastenverzeichnis", PriceCents: 2490},
	{ID: "erschliessung", Name: "Erschließungsbescheinigung", PriceCents: 1990},
	{ID: "bebauungsplan", Name: "Bebauungsplan", PriceCents: 1990},
}

// DefaultIDs are pre-selected when a session starts.
var DefaultIDs = []string{"grundbuchauszug", "liegenschaftskarte"}

// Lookup returns the catalog entry for an id.
func Lookup(id string) (models.Document, bool) {
	for _, d := range Catalog {
		if d.ID == id {
			return d, true
		}
	}
	return models.Document{}, false
}

// Set is an ordered selection, unique by document id. Insertion order is
// preserved for display.
type Set struct {
	docs []models.Document
}

// NewDefaultSet returns a set seeded with the default documents.
func NewDefaultSet() *Set {
	s := &Set{}
	for _, id := range DefaultIDs {
		doc, _ := Lookup(id)
		s.docs = append(s.docs, doc)
	}
	return s
}

// NewSetFrom restores a set from a stored document list, dropping
// duplicate ids.
func NewSetFrom(docs []models.Document) *Set {
	s := &Set{}
	for _, d := range docs {
		if !s.Contains(d.ID) {
			s.docs = append(s.docs, d)
		}
	}
	return s
}

// Toggle adds the document if absent and removes it if present. Calling it
// twice with the same document restores the prior state.
func (s *Set) Toggle(doc models.Document) {
	for i, d := range s.docs {
		if d.ID == doc.ID {
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return
		}
	}
	s.docs = append(s.docs, doc)
}

// Contains reports whether the id is selected.
func (s *Set) Contains(id string) bool {
	for _, d := range s.docs {
		if d.ID == id {
			return true
		}
	}
	return false
}

// Documents returns the selection in insertion order.
func (s *Set) Documents() []models.Document {
	out := make([]models.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// TotalCents sums the selected prices.
func (s *Set) TotalCents() int64 {
	var total int64
	for _, d := range s.docs {
		total += d.PriceCents
	}
	return total
}

// FormatTotal renders the total with two decimals for display.
func (s *Set) FormatTotal() string {
	return models.FormatCents(s.TotalCents())
}

// Len returns the number of selected documents.
func (s *Set) Len() int {
	return len(s.docs)
}
