// Package prescriptions is the client for doctor-issued prescriptions.
package prescriptions

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/prescription"

type Person struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

// Medication is one line of a prescription.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type Prescription struct {
	ID          string               `json:"_id,omitempty"`
	Doctor      resource.Ref[Person] `json:"doctor"`
	Patient     resource.Ref[Person] `json:"patient"`
	Schedule    string               `json:"schedule,omitempty"`
	Diagnosis   string               `json:"diagnosis,omitempty"`
	Medications []Medication         `json:"medications,omitempty"`
	Advice      string               `json:"advice,omitempty"`
	FollowUp    *time.Time           `json:"followUpDate,omitempty"`
	CreatedAt   *time.Time           `json:"createdAt,omitempty"`
}

type Client struct {
	*resource.Client[Prescription]
}

func NewClient(t resource.Transport) *Client {
	return &Client{Client: resource.New[Prescription](t, BasePath)}
}

// GetByPatient pages through a patient's prescriptions, newest first, with
// the prescribing doctor expanded. params carries page/limit and may carry
// its own options: extra filter keys are kept and a sort replaces the default,
// but the patient filter always applies.
func (c *Client) GetByPatient(ctx context.Context, patientID string, params url.Values) (*resource.Page[Prescription], error) {
	query, err := resource.OverlayOptions(params, resource.Options{
		Filter:          map[string]any{"patient": patientID},
		Sort:            resource.Desc("createdAt"),
		PopulateOptions: &resource.Populate{Path: "doctor", Select: "fullName email"},
	})
	if err != nil {
		return nil, err
	}
	return c.GetPaginated(ctx, query)
}

// GetByDoctor pages through prescriptions a doctor issued.
func (c *Client) GetByDoctor(ctx context.Context, doctorID string, params url.Values) (*resource.Page[Prescription], error) {
	return c.PageAt(ctx, c.Path("doctor", doctorID), params)
}

// GetDetails returns one prescription with both parties populated.
func (c *Client) GetDetails(ctx context.Context, id string) (*Prescription, error) {
	return resource.FullResponse[*Prescription](ctx, c.Client, http.MethodGet, c.Path(id, "details"), nil, nil)
}
