package services

import (
	"ltv-dashboard/internal/models"
)

// TotalPages is ceil(rows/size) with a floor of one page, so an empty
// result set still renders as page 1 of 1.
func TotalPages(rowCount, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (rowCount + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces a 1-based page into [1, totalPages]. A filter that
// shrinks the result set below the current page clamps it down here.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate slices the filtered+sorted rows into the requested window and
// reports pagination metadata. Concatenating every page in order yields
// the input exactly.
func Paginate(rows []models.ReportRow, page, pageSize int) ([]models.ReportRow, models.PageInfo) {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(rows), pageSize)
	page = ClampPage(page, total)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(rows) {
		start = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}

	info := models.PageInfo{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total,
		TotalRows:  len(rows),
		Pages:      PageRefs(page, total),
	}
	return rows[start:end], info
}

// PageRefs builds the compressed page-index list: every page when there
// are at most five, otherwise the first page, the three pages centred on
// current, and the last page, with ellipses marking elided ranges.
func PageRefs(current, total int) []models.PageRef {
	const maxPlain = 5

	if total <= maxPlain {
		refs := make([]models.PageRef, 0, total)
		for i := 1; i <= total; i++ {
			refs = append(refs, models.PageRef{Number: i})
		}
		return refs
	}

	left := current - 1
	right := current + 1
	if left < 1 {
		left = 1
	}
	if right > total {
		right = total
	}

	refs := []models.PageRef{{Number: 1}}
	if left > 2 {
		refs = append(refs, models.PageRef{Ellipsis: true})
	}
	for i := max(left, 2); i <= min(right, total-1); i++ {
		refs = append(refs, models.PageRef{Number: i})
	}
	if right < total-1 {
		refs = append(refs, models.PageRef{Ellipsis: true})
	}
	return append(refs, models.PageRef{Number: total})
}
