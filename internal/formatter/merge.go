package formatter

import "github.com/omfmartin/pocket-book-dictionary/internal/domain"

// Merge groups entries by headword in first-seen order so that every
// headword becomes a single article. Entries keep their relative order
// within a group. The input slice is not modified.
func Merge(entries []domain.Entry) []domain.Entry {
	order := make([]string, 0, len(entries))
	groups := make(map[string][]domain.Entry, len(entries))
	for _, e := range entries {
		if _, ok := groups[e.Headword]; !ok {
			order = append(order, e.Headword)
		}
		groups[e.Headword] = append(groups[e.Headword], e)
	}

	out := make([]domain.Entry, 0, len(entries))
	for _, hw := range order {
		group := groups[hw]
		source := group[0].Source
		for _, e := range group {
			e.Source = source
			out = append(out, e)
		}
	}
	return out
}
