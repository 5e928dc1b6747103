package zendesk

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const maxPerPage = 100

// FetchAll retrieves every record of a collection endpoint such as
// "/tickets.json", where key names the collection ("tickets").
//
// The first page is fetched to learn the total count; the remaining pages
// are requested concurrently. Records are returned in page order.
func (c *Client) FetchAll(ctx context.Context, endpoint, key string, it IteratorOptions, sideload []string) ([]Response, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: collection key is required", ErrInvalidConfig)
	}

	if it.PerPage <= 0 || it.PerPage > maxPerPage {
		it.PerPage = maxPerPage
	}
	if it.Page <= 0 {
		it.Page = 1
	}

	first, count, err := c.fetchPage(ctx, endpoint, key, it, sideload)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", it.Page, err)
	}

	lastPage := it.Page
	if count > 0 {
		lastPage = (count + it.PerPage - 1) / it.PerPage
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("count", count).
		Int("pages", lastPage).
		Msg("Fetching collection")

	if lastPage <= it.Page {
		return first, nil
	}

	pages := make([][]Response, lastPage-it.Page+1)
	pages[0] = first

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for page := it.Page + 1; page <= lastPage; page++ {
		g.Go(func() error {
			pageIt := it
			pageIt.Page = page
			records, _, err := c.fetchPage(gctx, endpoint, key, pageIt, sideload)
			if err != nil {
				return fmt.Errorf("failed to fetch page %d: %w", page, err)
			}
			pages[page-it.Page] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Response
	for _, records := range pages {
		all = append(all, records...)
	}
	return all, nil
}

// fetchPage returns the records under key and the collection's total count
func (c *Client) fetchPage(ctx context.Context, endpoint, key string, it IteratorOptions, sideload []string) ([]Response, int, error) {
	resp, err := c.Get(ctx, endpoint, PrepareQueryParams(sideload, it.Params()))
	if err != nil {
		return nil, 0, err
	}

	raw, ok := resp[key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrNoCollection, key)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q is not a list", ErrNoCollection, key)
	}

	records := make([]Response, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, Response(m))
		}
	}

	count := 0
	if n, ok := resp["count"].(float64); ok {
		count = int(n)
	}
	return records, count, nil
}
