// Package medservices is the client for individual medical services.
package medservices

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/service"

// Service is one bookable medical service.
type Service struct {
	ID              string  `json:"_id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration,omitempty"`
	Category        string  `json:"category,omitempty"`
	IsActive        bool    `json:"isActive"`
}

// ActiveState is what the toggle endpoint returns.
type ActiveState struct {
	ID       string `json:"_id"`
	IsActive bool   `json:"isActive"`
}

// Client is the medical service API.
type Client struct {
	*resource.Client[Service]
}

func NewClient(t resource.Transport) *Client {
	return &Client{Client: resource.New[Service](t, BasePath)}
}

// GetActive lists services currently offered.
func (c *Client) GetActive(ctx context.Context) ([]Service, error) {
	return c.ListAt(ctx, c.Path("active"), nil)
}

// GetByPackage pages through the services bundled in one health package.
func (c *Client) GetByPackage(ctx context.Context, packageID string, params url.Values) (*resource.Page[Service], error) {
	return c.PageAt(ctx, c.Path("package", packageID), params)
}

// ToggleActive flips the service's active flag.
func (c *Client) ToggleActive(ctx context.Context, id string) (*ActiveState, error) {
	return resource.FullResponse[*ActiveState](ctx, c.Client, http.MethodPatch, c.Path(id, "toggle"), nil, nil)
}
