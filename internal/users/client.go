// Package users is the client for portal accounts (patients, doctors, admins).
package users

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/user"

// Role values the backend recognizes.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is a portal account.
type User struct {
	ID          string     `json:"_id,omitempty"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Address     string     `json:"address,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

// Details is the aggregated user view with activity counters.
type Details struct {
	User
	TotalSchedules     int     `json:"totalSchedules"`
	TotalPrescriptions int     `json:"totalPrescriptions"`
	TotalSpent         float64 `json:"totalSpent"`
}

type ActiveState struct {
	ID       string `json:"_id"`
	IsActive bool   `json:"isActive"`
}

type Client struct {
	*resource.Client[User]
	batchLimit int
}

// NewClient builds the user client. batchLimit bounds GetByIDs concurrency;
// zero means unbounded.
func NewClient(t resource.Transport, batchLimit int) *Client {
	return &Client{Client: resource.New[User](t, BasePath), batchLimit: batchLimit}
}

// GetByRole pages through users with the given role. Extra filter keys in
// opts are kept.
func (c *Client) GetByRole(ctx context.Context, role string, opts resource.Options) (*resource.Page[User], error) {
	params, err := opts.WithFilter("role", role).Values()
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, params)
}

func (c *Client) GetDetails(ctx context.Context, id string) (*Details, error) {
	return resource.FullResponse[*Details](ctx, c.Client, http.MethodGet, c.Path(id, "details"), nil, nil)
}

// GetByIDs resolves ids in order, skipping deleted accounts. Other failures
// are reported in err alongside the users that did resolve, so the partial
// slice is valid even when err is non-nil.
func (c *Client) GetByIDs(ctx context.Context, ids []string) ([]User, error) {
	return resource.ResolveMany(ctx, ids, c.batchLimit, c.GetByIDSafe)
}

func (c *Client) ToggleActive(ctx context.Context, id string) (*ActiveState, error) {
	return resource.FullResponse[*ActiveState](ctx, c.Client, http.MethodPatch, c.Path(id, "toggle"), nil, nil)
}

// Patients is shorthand for GetByRole(RolePatient) with plain page params.
func (c *Client) Patients(ctx context.Context, page, limit int) (*resource.Page[User], error) {
	params, err := resource.Options{Filter: map[string]any{"role": RolePatient}}.Values()
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, resource.Merge(params, resource.PageParams(page, limit)))
}
