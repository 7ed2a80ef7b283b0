package http

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/minihttp/minihttp"
	"github.com/minihttp/minihttp/metrics"
)

const listingTimeFormat = "2006-01-02 15:04:05"

type listingRow struct {
	Name     string
	Href     string
	Size     string
	Modified string
}

type pagerLink struct {
	Page     int
	Href     string
	Current  bool
	Ellipsis bool
}

type listingView struct {
	Path       string
	Crumbs     []minihttp.Crumb
	Parent     string
	Rows       []listingRow
	Pager      []pagerLink
	PrevHref   string
	NextHref   string
	Summary    string
	User       string
	LogoutHref string
}

func newListingView(page minihttp.ListingPage, sess *minihttp.Session, currentURL string) listingView {
	v := listingView{
		Path:    page.Path,
		Crumbs:  minihttp.Breadcrumbs(page.Path),
		Summary: fmt.Sprintf("Page %d of %d, %d items", page.Page, page.TotalPages, page.TotalItems),
	}

	if !page.IsRoot() {
		v.Parent = minihttp.EscapePath(minihttp.ParentPath(page.Path))
	}

	v.Rows = make([]listingRow, 0, len(page.Entries))
	for _, e := range page.Entries {
		row := listingRow{Name: e.Name, Href: page.EntryHref(e)}
		if e.IsDir {
			row.Name += "/"
			row.Size = "-"
		} else {
			row.Size = minihttp.FormatSize(e.Size)
			row.Modified = e.LastModified.Format(listingTimeFormat)
		}
		v.Rows = append(v.Rows, row)
	}

	for _, item := range page.Pager() {
		switch item.Kind {
		case minihttp.PagerEllipsis:
			v.Pager = append(v.Pager, pagerLink{Ellipsis: true})
		case minihttp.PagerCurrent:
			v.Pager = append(v.Pager, pagerLink{Page: item.Page, Current: true})
		default:
			v.Pager = append(v.Pager, pagerLink{Page: item.Page, Href: page.PageLink(item.Page)})
		}
	}

	if page.HasPrev() {
		v.PrevHref = page.PageLink(page.Page - 1)
	}
	if page.HasNext() {
		v.NextHref = page.PageLink(page.Page + 1)
	}

	if sess != nil {
		v.User = sess.Username
		v.LogoutHref = minihttp.LogoutPath + "?" + minihttp.ReturnURLParam + "=" + url.QueryEscape(currentURL)
	}

	return v
}

func (h *Handler) renderListing(w http.ResponseWriter, r *http.Request, rel string) {
	entries, err := h.files.ListDirectory(r.Context(), rel)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	page := minihttp.NewListingPage(r.URL.Path, entries, minihttp.ParseListingQuery(r.URL.Query()))
	metrics.RecordListing(page.TotalItems)

	renderHTML(w, http.StatusOK, listingTemplate, newListingView(page, SessionFromContext(r.Context()), r.URL.RequestURI()))
}
