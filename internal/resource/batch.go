package resource

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/medcare-portal/internal/transport"
)

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	return transport.StatusCode(err) == http.StatusNotFound
}

// GetByIDSafe is GetByID with a 404 turned into (nil, nil). Every other error
// is returned unchanged.
func (c *Client[T]) GetByIDSafe(ctx context.Context, id string) (*T, error) {
	rec, err := c.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// ResolveMany fetches every id concurrently (at most limit in flight; limit
// <= 0 starts them all at once) and waits for all of them to settle.
//
// The result keeps input order and holds only records that resolved. Missing
// records are dropped silently. Other failures are dropped from the result
// too but reported together in the returned error, so a non-nil error can
// accompany a usable partial result. fetch signals a missing record with
// (nil, nil) or a 404 error.
func ResolveMany[T any](ctx context.Context, ids []string, limit int, fetch func(ctx context.Context, id string) (*T, error)) ([]T, error) {
	results := make([]*T, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			rec, err := fetch(ctx, id)
			if err != nil {
				if !IsNotFound(err) {
					errs[i] = fmt.Errorf("resolve %q: %w", id, err)
				}
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	out := make([]T, 0, len(ids))
	for _, rec := range results {
		if rec != nil {
			out = append(out, *rec)
		}
	}
	return out, errors.Join(errs...)
}
