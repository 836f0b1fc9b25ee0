package pagination

import "strconv"

// maxUncollapsed is the largest page count rendered without ellipses.
const maxUncollapsed = 7

// PageItem is one entry of a pagination bar: a page number or an ellipsis.
type PageItem struct {
	Number   int
	Ellipsis bool
}

func (p PageItem) String() string {
	if p.Ellipsis {
		return "…"
	}
	return strconv.Itoa(p.Number)
}

func page(n int) PageItem { return PageItem{Number: n} }

var ellipsis = PageItem{Ellipsis: true}

// PageNumbers computes the compact page window for total pages with current
// selected. Up to seven pages are listed in full. Beyond that the first and
// last page are always shown, with current and its immediate neighbours in
// between and an ellipsis for each gap:
//
//	PageNumbers(10, 1)  = 1 2 … 10
//	PageNumbers(10, 5)  = 1 … 4 5 6 … 10
//	PageNumbers(10, 10) = 1 … 9 10
func PageNumbers(total, current int) []PageItem {
	if total <= 0 {
		return nil
	}
	if total <= maxUncollapsed {
		items := make([]PageItem, 0, total)
		for n := 1; n <= total; n++ {
			items = append(items, page(n))
		}
		return items
	}

	items := []PageItem{page(1)}
	if current > 3 {
		items = append(items, ellipsis)
	}
	for n := max(2, current-1); n <= min(total-1, current+1); n++ {
		items = append(items, page(n))
	}
	if current < total-2 {
		items = append(items, ellipsis)
	}
	return append(items, page(total))
}

// Range returns the 1-based inclusive item range shown on page, or (0, 0)
// when there is nothing to show.
func Range(page, pageSize, totalItems int) (from, to int) {
	if page < 1 || pageSize <= 0 || totalItems <= 0 {
		return 0, 0
	}
	from = (page-1)*pageSize + 1
	if from > totalItems {
		return 0, 0
	}
	return from, min(page*pageSize, totalItems)
}

// slice returns the page-th window of items.
func slice[T any](items []T, page, pageSize int) []T {
	from, to := Range(page, pageSize, len(items))
	if from == 0 {
		return nil
	}
	return items[from-1 : to]
}
