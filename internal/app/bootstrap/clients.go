// Package bootstrap assembles the portal API clients from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/medcare-portal/internal/blogs"
	"github.com/wolfman30/medcare-portal/internal/chat"
	appconfig "github.com/wolfman30/medcare-portal/internal/config"
	"github.com/wolfman30/medcare-portal/internal/doctors"
	"github.com/wolfman30/medcare-portal/internal/healthpackages"
	"github.com/wolfman30/medcare-portal/internal/medservices"
	"github.com/wolfman30/medcare-portal/internal/observability/metrics"
	"github.com/wolfman30/medcare-portal/internal/payments"
	"github.com/wolfman30/medcare-portal/internal/prescriptions"
	"github.com/wolfman30/medcare-portal/internal/schedules"
	"github.com/wolfman30/medcare-portal/internal/transport"
	"github.com/wolfman30/medcare-portal/internal/users"
	"github.com/wolfman30/medcare-portal/pkg/logging"
)

// Clients holds every resource client, all sharing one transport.
type Clients struct {
	Transport     *transport.Client
	Doctors       *doctors.Client
	Packages      *healthpackages.Client
	Services      *medservices.Client
	Users         *users.Client
	Schedules     *schedules.Client
	Prescriptions *prescriptions.Client
	Payments      *payments.Client
	Blogs         *blogs.Client
	Chat          *chat.Client

	redis *redis.Client
}

// NewClients builds the transport and the clients on top of it. reg receives
// the client metrics when cfg.MetricsEnabled; nil means the default registry.
// Chat endpoint pins go to Redis when it is configured and reachable.
func NewClients(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer) (*Clients, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	var m *metrics.ClientMetrics
	if cfg.MetricsEnabled {
		m = metrics.NewClientMetrics(reg)
	}

	tcfg := transport.Config{
		BaseURL:    cfg.APIBaseURL,
		Token:      transport.TokenFromString(cfg.APIToken),
		Timeout:    cfg.APITimeout,
		MaxRetries: cfg.APIMaxRetries,
		Backoff:    cfg.APIRetryBackoff,
		Logger:     logger.Component("transport"),
		UserAgent:  cfg.UserAgent,
	}
	if m != nil {
		tcfg.Metrics = m
	}
	t, err := transport.New(tcfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: transport: %w", err)
	}

	pins, rdb := BuildPinStore(ctx, cfg, logger)
	chatCfg := chat.Config{
		Endpoints: cfg.ChatEndpoints,
		PinStore:  pins,
		Logger:    logger,
	}
	if m != nil {
		chatCfg.Metrics = m
	}

	return &Clients{
		Transport:     t,
		Doctors:       doctors.NewClient(t, doctors.WithBatchLimit(cfg.BatchConcurrency)),
		Packages:      healthpackages.NewClient(t),
		Services:      medservices.NewClient(t),
		Users:         users.NewClient(t, cfg.BatchConcurrency),
		Schedules:     schedules.NewClient(t),
		Prescriptions: prescriptions.NewClient(t),
		Payments:      payments.NewClient(t),
		Blogs:         blogs.NewClient(t),
		Chat:          chat.NewClient(t, chatCfg),
		redis:         rdb,
	}, nil
}

// Close releases the Redis connection, if any.
func (c *Clients) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
