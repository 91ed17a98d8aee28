package docs

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/singleflight"
)

// Documents fetches and parses documentation pages once per page URL and
// shares the parsed tree. Most services document all of their controls on a
// single page, so a crawl issues one request per service rather than one
// per control.
type Documents struct {
	fetcher Fetcher
	group   singleflight.Group

	mu    sync.RWMutex
	pages map[string]pageEntry
}

type pageEntry struct {
	doc *html.Node
	err error
}

// NewDocuments returns an empty page cache in front of fetcher.
func NewDocuments(fetcher Fetcher) *Documents {
	return &Documents{fetcher: fetcher, pages: make(map[string]pageEntry)}
}

// Get returns the parsed page behind url; the fragment is ignored. Fetch and
// parse failures are remembered for the page unless they were caused by ctx
// ending.
func (d *Documents) Get(ctx context.Context, url string) (*html.Node, error) {
	page := PageURL(url)
	if e, ok := d.lookup(page); ok {
		return e.doc, e.err
	}

	v, err, _ := d.group.Do(page, func() (any, error) {
		if e, ok := d.lookup(page); ok {
			return e.doc, e.err
		}
		doc, err := d.load(ctx, page)
		if err != nil && ctx.Err() != nil {
			return nil, err
		}
		d.mu.Lock()
		d.pages[page] = pageEntry{doc: doc, err: err}
		d.mu.Unlock()
		return doc, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*html.Node), nil
}

// Len returns the number of distinct pages fetched so far.
func (d *Documents) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.pages)
}

func (d *Documents) lookup(page string) (pageEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.pages[page]
	return e, ok
}

func (d *Documents) load(ctx context.Context, page string) (*html.Node, error) {
	body, err := d.fetcher.Fetch(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", page, err)
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", page, err)
	}
	return doc, nil
}
