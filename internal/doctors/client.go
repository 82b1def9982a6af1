package doctors

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const (
	BasePath               = "/api/v1/doctor"
	SpecializationBasePath = "/api/v1/specialization"
)

// Client is the doctor API. The embedded generic client supplies CRUD,
// pagination and GetByIDSafe.
type Client struct {
	*resource.Client[Doctor]

	// Specializations needs nothing beyond plain CRUD.
	Specializations *resource.Client[Specialization]

	batchLimit int
}

// Option configures a Client.
type Option func(*Client)

// WithBatchLimit bounds concurrent fetches in GetByIDs. Zero means unbounded.
func WithBatchLimit(n int) Option {
	return func(c *Client) {
		c.batchLimit = n
	}
}

// NewClient builds the doctor client on top of t.
func NewClient(t resource.Transport, opts ...Option) *Client {
	c := &Client{
		Client:          resource.New[Doctor](t, BasePath),
		Specializations: resource.New[Specialization](t, SpecializationBasePath),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBySpecialization lists doctors of one specialization. params carries
// page/limit and any extra filter or sort keys.
func (c *Client) GetBySpecialization(ctx context.Context, specializationID string, params url.Values) (*resource.Page[Doctor], error) {
	return c.PageAt(ctx, c.Path("specialization", specializationID), params)
}

// GetByIDs resolves many doctor ids, skipping deleted ones. Results follow
// the order of ids. A failure other than 404 does not abort the batch: the
// returned slice still holds every doctor that resolved, and err joins the
// failures. Use the slice even when err is non-nil.
func (c *Client) GetByIDs(ctx context.Context, ids []string) ([]Doctor, error) {
	return resource.ResolveMany(ctx, ids, c.batchLimit, c.GetByIDSafe)
}

// GetWithSpecialization pages through doctors with their specialization
// expanded inline.
func (c *Client) GetWithSpecialization(ctx context.Context, opts resource.Options) (*resource.Page[Doctor], error) {
	opts.PopulateOptions = &resource.Populate{Path: "specialization", Select: "name description"}
	params, err := opts.Values()
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, params)
}

// GetDetails fetches the aggregated doctor view.
func (c *Client) GetDetails(ctx context.Context, id string) (*Details, error) {
	return resource.FullResponse[*Details](ctx, c.Client, http.MethodGet, c.Path(id, "details"), nil, nil)
}

// ToggleActive flips the doctor's active flag server-side.
func (c *Client) ToggleActive(ctx context.Context, id string) (*ActiveState, error) {
	return resource.FullResponse[*ActiveState](ctx, c.Client, http.MethodPatch, c.Path(id, "toggle"), nil, nil)
}
