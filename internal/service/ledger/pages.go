package ledger

import "github.com/beeconnect/server/internal/domain/models"

// DefaultPageSize is used when no positive page size is supplied.
const DefaultPageSize = 5

// Pages is an ordered ledger exposed as consecutive fixed-size chunks.
type Pages struct {
	size    int
	entries []models.Inspection
}

// Paginate chunks entries into pages of size.
func Paginate(entries []models.Inspection, size int) Pages {
	if size <= 0 {
		size = DefaultPageSize
	}
	return Pages{size: size, entries: entries}
}

// Size is the maximum number of entries per page.
func (p Pages) Size() int {
	if p.size <= 0 {
		return DefaultPageSize
	}
	return p.size
}

// Total is the number of entries across all pages.
func (p Pages) Total() int {
	return len(p.entries)
}

// Count is the number of pages.
func (p Pages) Count() int {
	return (len(p.entries) + p.Size() - 1) / p.Size()
}

// valid reports whether index addresses an existing page.
func (p Pages) valid(index int) bool {
	return index >= 0 && index < p.Count()
}

// Page returns page index, or an empty page when index is out of range.
func (p Pages) Page(index int) []models.Inspection {
	if !p.valid(index) {
		return []models.Inspection{}
	}
	start := index * p.Size()
	end := start + p.Size()
	if end > len(p.entries) {
		end = len(p.entries)
	}
	out := make([]models.Inspection, end-start)
	copy(out, p.entries[start:end])
	return out
}

// Flatten returns the entries of all pages in order.
func (p Pages) Flatten() []models.Inspection {
	out := make([]models.Inspection, len(p.entries))
	copy(out, p.entries)
	return out
}

// Prepend returns new Pages with rec as the first entry.
func (p Pages) Prepend(rec models.Inspection) Pages {
	entries := make([]models.Inspection, 0, len(p.entries)+1)
	entries = append(entries, rec)
	entries = append(entries, p.entries...)
	return Pages{size: p.Size(), entries: entries}
}

// Navigator walks Pages keeping the index inside [0, Count).
type Navigator struct {
	pages Pages
	index int
}

// NewNavigator positions a navigator at index, clamped to the valid range.
func NewNavigator(pages Pages, index int) *Navigator {
	n := &Navigator{pages: pages}
	n.Jump(index)
	return n
}

// Index is the current 0-based page index.
func (n *Navigator) Index() int {
	return n.index
}

// Current returns the entries of the current page.
func (n *Navigator) Current() []models.Inspection {
	return n.pages.Page(n.index)
}

// HasPrev reports whether a previous page exists.
func (n *Navigator) HasPrev() bool {
	return n.index > 0
}

// HasNext reports whether a following page exists.
func (n *Navigator) HasNext() bool {
	return n.index < n.pages.Count()-1
}

// Prev moves back one page; it reports false at the first page.
func (n *Navigator) Prev() bool {
	if !n.HasPrev() {
		return false
	}
	n.index--
	return true
}

// Next moves forward one page; it reports false at the last page.
func (n *Navigator) Next() bool {
	if !n.HasNext() {
		return false
	}
	n.index++
	return true
}

// Jump moves to index clamped to the valid range and returns the resulting index.
func (n *Navigator) Jump(index int) int {
	last := n.pages.Count() - 1
	switch {
	case last < 0 || index < 0:
		n.index = 0
	case index > last:
		n.index = last
	default:
		n.index = index
	}
	return n.index
}

// PageView is a serializable snapshot of the navigator position.
type PageView struct {
	Index   int                 `json:"page"`
	Count   int                 `json:"page_count"`
	Size    int                 `json:"page_size"`
	Total   int                 `json:"total"`
	HasPrev bool                `json:"has_prev"`
	HasNext bool                `json:"has_next"`
	Entries []models.Inspection `json:"entries"`
}

// View returns the current page together with navigation state.
func (n *Navigator) View() PageView {
	return PageView{
		Index:   n.index,
		Count:   n.pages.Count(),
		Size:    n.pages.Size(),
		Total:   n.pages.Total(),
		HasPrev: n.HasPrev(),
		HasNext: n.HasNext(),
		Entries: n.Current(),
	}
}
