// Package schedules is the client for doctor appointments.
package schedules

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/schedule"

// Participant is the slim doctor/patient view the backend populates.
type Participant struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Schedule is one appointment slot booked by a patient.
type Schedule struct {
	ID           string                    `json:"_id,omitempty"`
	Doctor       resource.Ref[Participant] `json:"doctor"`
	Patient      resource.Ref[Participant] `json:"patient"`
	Package      string                    `json:"package,omitempty"`
	Date         *time.Time                `json:"date,omitempty"`
	StartTime    string                    `json:"startTime,omitempty"`
	EndTime      string                    `json:"endTime,omitempty"`
	Status       Status                    `json:"status,omitempty"`
	Notes        string                    `json:"notes,omitempty"`
	CancelReason string                    `json:"cancelReason,omitempty"`
}

type Client struct {
	*resource.Client[Schedule]
}

func NewClient(t resource.Transport) *Client {
	return &Client{Client: resource.New[Schedule](t, BasePath)}
}

// GetByDoctor pages through a doctor's appointments.
func (c *Client) GetByDoctor(ctx context.Context, doctorID string, params url.Values) (*resource.Page[Schedule], error) {
	return c.PageAt(ctx, c.Path("doctor", doctorID), params)
}

// GetByPatient pages through a patient's appointments.
func (c *Client) GetByPatient(ctx context.Context, patientID string, params url.Values) (*resource.Page[Schedule], error) {
	return c.PageAt(ctx, c.Path("patient", patientID), params)
}

// GetWithParticipants pages through /many with the doctor and patient
// expanded inline.
func (c *Client) GetWithParticipants(ctx context.Context, opts resource.Options) (*resource.Page[Schedule], error) {
	opts.PopulateOptions = &resource.Populate{Path: "doctor patient", Select: "fullName email phone"}
	params, err := opts.Values()
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, params)
}

// UpdateStatus moves an appointment to status. Unknown statuses fail locally.
func (c *Client) UpdateStatus(ctx context.Context, id string, status Status) (*Schedule, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	body := map[string]Status{"status": status}
	return resource.FullResponse[*Schedule](ctx, c.Client, http.MethodPatch, c.Path(id, "status"), nil, body)
}

// Cancel cancels an appointment, recording reason when given.
func (c *Client) Cancel(ctx context.Context, id, reason string) (*Schedule, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return resource.FullResponse[*Schedule](ctx, c.Client, http.MethodPatch, c.Path(id, "cancel"), nil, body)
}
