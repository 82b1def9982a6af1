// Package healthpackages is the client for bookable health check packages.
package healthpackages

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/package"

// Package is a bundle of medical services sold at one price.
type Package struct {
	ID            string   `json:"_id,omitempty"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	DiscountPrice float64  `json:"discountPrice,omitempty"`
	Services      []string `json:"services,omitempty"`
	Image         string   `json:"image,omitempty"`
	IsActive      bool     `json:"isActive"`
}

// SearchQuery narrows the package list. Zero fields are not sent.
type SearchQuery struct {
	Title    string
	MinPrice float64
	MaxPrice float64
	Active   *bool
	Sort     resource.Sort
	Page     int
	Limit    int
}

// Options converts the query into the backend's options parameter.
func (q SearchQuery) Options() resource.Options {
	opts := resource.Options{Sort: q.Sort}
	if title := strings.TrimSpace(q.Title); title != "" {
		opts = opts.WithFilter("title", resource.Regex(title))
	}
	var lo, hi any
	if q.MinPrice > 0 {
		lo = q.MinPrice
	}
	if q.MaxPrice > 0 {
		hi = q.MaxPrice
	}
	if lo != nil || hi != nil {
		opts = opts.WithFilter("price", resource.Between(lo, hi))
	}
	if q.Active != nil {
		opts = opts.WithFilter("isActive", *q.Active)
	}
	if q.Page > 0 || q.Limit > 0 {
		opts.Pagination = &resource.Pagination{Page: q.Page, Limit: q.Limit}
	}
	return opts
}

// ActiveState is what the toggle endpoint returns.
type ActiveState struct {
	ID       string `json:"_id"`
	IsActive bool   `json:"isActive"`
}

// BulkDeleteResult reports how many packages a bulk delete removed.
type BulkDeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}

// Client is the health package API.
type Client struct {
	*resource.Client[Package]
}

func NewClient(t resource.Transport) *Client {
	return &Client{Client: resource.New[Package](t, BasePath)}
}

// Search pages through packages matching q.
func (c *Client) Search(ctx context.Context, q SearchQuery) (*resource.Page[Package], error) {
	params, err := q.Options().Values()
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, resource.Merge(params, resource.PageParams(q.Page, q.Limit)))
}

// GetActive lists packages currently offered to patients.
func (c *Client) GetActive(ctx context.Context) ([]Package, error) {
	return c.ListAt(ctx, c.Path("active"), nil)
}

// ToggleActive flips the package's active flag.
func (c *Client) ToggleActive(ctx context.Context, id string) (*ActiveState, error) {
	return resource.FullResponse[*ActiveState](ctx, c.Client, http.MethodPatch, c.Path(id, "toggle"), nil, nil)
}

// DeleteBulk removes several packages in one call.
func (c *Client) DeleteBulk(ctx context.Context, ids []string) (*BulkDeleteResult, error) {
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	return resource.FullResponse[*BulkDeleteResult](ctx, c.Client, http.MethodDelete, c.Path("bulk"), nil, body)
}
