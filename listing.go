package minihttp

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500

	// pager window around the current page
	pagerBefore = 5
	pagerAfter  = 4
)

// ListingQuery holds the pagination parameters of a listing request.
type ListingQuery struct {
	Page     int
	PageSize int
}

// ParseListingQuery reads page and pageSize from q. Missing, unparseable or
// non-positive values fall back to their defaults and pageSize is capped at
// MaxPageSize; it never fails.
func ParseListingQuery(q url.Values) ListingQuery {
	lq := ListingQuery{Page: 1, PageSize: DefaultPageSize}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		lq.Page = p
	}

	if s, err := strconv.Atoi(q.Get("pageSize")); err == nil && s > 0 {
		lq.PageSize = min(s, MaxPageSize)
	}

	return lq
}

// ListingPage is one page of a sorted directory listing.
type ListingPage struct {
	// Path is the request path of the directory, as received.
	Path       string
	Entries    []DirectoryEntry
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
}

// NewListingPage sorts entries and cuts out the requested page. A page past
// the end is clamped to the last page, so the result is never an empty
// out-of-range page.
func NewListingPage(requestPath string, entries []DirectoryEntry, q ListingQuery) ListingPage {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	q.PageSize = min(q.PageSize, MaxPageSize)
	if q.Page <= 0 {
		q.Page = 1
	}

	ordered := SortEntries(entries)
	total := len(ordered)
	totalPages := max(1, (total+q.PageSize-1)/q.PageSize)
	page := min(q.Page, totalPages)

	start := (page - 1) * q.PageSize
	end := min(start+q.PageSize, total)

	return ListingPage{
		Path:       requestPath,
		Entries:    ordered[start:end],
		Page:       page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
		TotalItems: total,
	}
}

// SortEntries returns a sorted copy of entries: directories first, then
// files, each group ordered case-insensitively by name. Names that differ
// only in case are ordered by their exact bytes so the result is stable.
func SortEntries(entries []DirectoryEntry) []DirectoryEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b DirectoryEntry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// IsRoot reports whether the listing is for the root directory.
func (p ListingPage) IsRoot() bool {
	return p.Path == "" || p.Path == "/"
}

// BasePath is the directory path with a trailing slash and percent-encoded
// segments, ready to have an escaped entry name appended.
func (p ListingPage) BasePath() string {
	base := EscapePath(p.Path)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// EntryHref is the link target of an entry on this page.
func (p ListingPage) EntryHref(e DirectoryEntry) string {
	href := p.BasePath() + url.PathEscape(e.Name)
	if e.IsDir {
		href += "/"
	}
	return href
}

// PageLink is the link to page n of this listing, keeping the page size.
func (p ListingPage) PageLink(n int) string {
	return fmt.Sprintf("%s?page=%d&pageSize=%d", EscapePath(p.Path), n, p.PageSize)
}

// PagerKind classifies an item of the page-number strip.
type PagerKind int

const (
	PagerLink PagerKind = iota
	PagerCurrent
	PagerEllipsis
)

// PagerItem is one element of the page-number strip.
type PagerItem struct {
	Kind PagerKind
	Page int
}

// HasPrev reports whether a Previous link is live.
func (p ListingPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a Next link is live.
func (p ListingPage) HasNext() bool { return p.Page < p.TotalPages }

// Pager returns the page-number strip: a window from five pages before to four
// pages after the current page, with the first and last page linked explicitly
// and gaps collapsed into an ellipsis when the window does not reach them.
func (p ListingPage) Pager() []PagerItem {
	start := max(1, p.Page-pagerBefore)
	end := min(p.TotalPages, p.Page+pagerAfter)

	var items []PagerItem
	if start > 1 {
		items = append(items, PagerItem{Kind: PagerLink, Page: 1})
		if start > 2 {
			items = append(items, PagerItem{Kind: PagerEllipsis})
		}
	}

	for i := start; i <= end; i++ {
		kind := PagerLink
		if i == p.Page {
			kind = PagerCurrent
		}
		items = append(items, PagerItem{Kind: kind, Page: i})
	}

	if end < p.TotalPages {
		if end < p.TotalPages-1 {
			items = append(items, PagerItem{Kind: PagerEllipsis})
		}
		items = append(items, PagerItem{Kind: PagerLink, Page: p.TotalPages})
	}

	return items
}

// Crumb is one breadcrumb segment. The last crumb has an empty Href.
type Crumb struct {
	Name string
	Href string
}

// Breadcrumbs splits requestPath into navigable segments, starting with a
// synthetic "Home" crumb for the root. Every crumb but the last links to its
// cumulative path.
func Breadcrumbs(requestPath string) []Crumb {
	segments := splitSegments(requestPath)

	crumbs := make([]Crumb, 0, len(segments)+1)
	crumbs = append(crumbs, Crumb{Name: "Home", Href: "/"})

	href := "/"
	for _, seg := range segments {
		href += url.PathEscape(seg) + "/"
		crumbs = append(crumbs, Crumb{Name: seg, Href: href})
	}

	crumbs[len(crumbs)-1].Href = ""
	return crumbs
}

// ParentPath returns the parent directory of requestPath with a trailing
// slash. The parent of the root is the root.
func ParentPath(requestPath string) string {
	trimmed := strings.TrimRight(requestPath, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx <= 0 {
		return "/"
	}
	return trimmed[:idx+1]
}

// FormatSize renders a byte count: plain bytes below 1024, otherwise KB, MB
// or GB with one decimal using a 1024 divisor.
func FormatSize(n int64) string {
	const unit = 1024
	switch {
	case n < 0:
		return "-"
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	case n < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/(unit*unit*unit))
	}
}
