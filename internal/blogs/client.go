// Package blogs is the client for health articles shown on the portal.
package blogs

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/blog"

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Author struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
}

type Post struct {
	ID        string               `json:"_id,omitempty"`
	Title     string               `json:"title"`
	Slug      string               `json:"slug,omitempty"`
	Summary   string               `json:"summary,omitempty"`
	Content   string               `json:"content,omitempty"`
	Thumbnail string               `json:"thumbnail,omitempty"`
	Tags      []string             `json:"tags,omitempty"`
	Author    resource.Ref[Author] `json:"author"`
	Status    string               `json:"status,omitempty"`
	CreatedAt *time.Time           `json:"createdAt,omitempty"`
}

// PublishState is what the publish toggle returns.
type PublishState struct {
	ID     string `json:"_id"`
	Status string `json:"status"`
}

type Client struct {
	*resource.Client[Post]
}

func NewClient(t resource.Transport) *Client {
	return &Client{Client: resource.New[Post](t, BasePath)}
}

// GetPublished pages through published posts, newest first, with the author
// expanded.
func (c *Client) GetPublished(ctx context.Context, page, limit int) (*resource.Page[Post], error) {
	params, err := resource.Options{
		Filter:          map[string]any{"status": StatusPublished},
		Sort:            resource.Desc("createdAt"),
		PopulateOptions: &resource.Populate{Path: "author", Select: "fullName avatar"},
	}.Values()
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, resource.Merge(params, resource.PageParams(page, limit)))
}

func (c *Client) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return resource.FullResponse[*Post](ctx, c.Client, http.MethodGet, c.Path("slug", slug), nil, nil)
}

// TogglePublished flips a post between draft and published.
func (c *Client) TogglePublished(ctx context.Context, id string) (*PublishState, error) {
	return resource.FullResponse[*PublishState](ctx, c.Client, http.MethodPatch, c.Path(id, "toggle"), nil, nil)
}
