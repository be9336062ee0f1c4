package entities

import (
	"strings"

	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
)

// Item is a destination as shown in a catalog page
type Item struct {
	sessionentities.Destination
	Selected bool
}

// Page is one page of the filtered catalog
type Page struct {
	Items    []Item
	Page     int
	Pages    int
	Total    int // destinations matching the filter
	Selected int // selected destinations overall
	Filter   string
}

// Filter returns the destinations whose title contains filter, case-insensitively
func Filter(catalog []sessionentities.Destination, filter string) []sessionentities.Destination {
	needle := strings.ToLower(strings.TrimSpace(filter))
	if needle == "" {
		return catalog
	}

	var out []sessionentities.Destination
	for _, d := range catalog {
		if strings.Contains(strings.ToLower(d.Title), needle) {
			out = append(out, d)
		}
	}
	return out
}

// Paginate cuts page n of the session's filtered catalog. Out of range pages are clamped.
func Paginate(s *sessionentities.Session, n, size int) Page {
	if size <= 0 {
		size = 10
	}

	matching := Filter(s.Catalog, s.Filter)
	pages := (len(matching) + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if n >= pages {
		n = pages - 1
	}
	if n < 0 {
		n = 0
	}

	start := n * size
	end := start + size
	if end > len(matching) {
		end = len(matching)
	}

	items := make([]Item, 0, end-start)
	for _, d := range matching[start:end] {
		items = append(items, Item{Destination: d, Selected: s.IsSelected(d.DisplayID)})
	}

	return Page{
		Items:    items,
		Page:     n,
		Pages:    pages,
		Total:    len(matching),
		Selected: len(s.Selected),
		Filter:   s.Filter,
	}
}

// ParseKind validates a bulk selection kind. Empty means all.
func ParseKind(raw string) (sessionentities.DestinationKind, bool) {
	switch k := sessionentities.DestinationKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case "", sessionentities.KindAll:
		return sessionentities.KindAll, true
	case sessionentities.KindGroup, sessionentities.KindTopic:
		return k, true
	}
	return "", false
}
