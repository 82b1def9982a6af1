// Package payments is the client for package and appointment payments.
package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/wolfman30/medcare-portal/internal/resource"
)

const BasePath = "/api/v1/payment"

var ErrInvalidStatus = errors.New("payments: invalid status")

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusPaid      PaymentStatus = "paid"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
	StatusCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// Settled reports whether money has moved (or moved back).
func (s PaymentStatus) Settled() bool {
	return s == StatusPaid || s == StatusRefunded
}

type Payment struct {
	ID            string        `json:"_id,omitempty"`
	User          string        `json:"user"`
	Package       string        `json:"package,omitempty"`
	Schedule      string        `json:"schedule,omitempty"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency,omitempty"`
	Method        string        `json:"method,omitempty"`
	Status        PaymentStatus `json:"status,omitempty"`
	TransactionID string        `json:"transactionId,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
}

type Client struct {
	*resource.Client[Payment]
}

func NewClient(t resource.Transport) *Client {
	return &Client{Client: resource.New[Payment](t, BasePath)}
}

// GetByUser pages through one user's payment history.
func (c *Client) GetByUser(ctx context.Context, userID string, params url.Values) (*resource.Page[Payment], error) {
	return c.PageAt(ctx, c.Path("user", userID), params)
}

// UpdateStatus sets the payment status. Unknown statuses fail locally.
func (c *Client) UpdateStatus(ctx context.Context, id string, status PaymentStatus) (*Payment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	body := map[string]PaymentStatus{"status": status}
	return resource.FullResponse[*Payment](ctx, c.Client, http.MethodPut, c.Path(id, "status"), nil, body)
}
