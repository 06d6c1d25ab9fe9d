// Package sdk exposes the high-level Slivka client entry points. It wires
// together the REST transport, the service catalog cache, job submission and
// polling, and result file retrieval.
package sdk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bartongroup/slivka-go/pkg/config"
	"github.com/bartongroup/slivka-go/pkg/model"
	"github.com/bartongroup/slivka-go/pkg/rest"
)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// NotFoundError reports a lookup of a service, job, or file id the server
// (or the cached catalog) does not know.
type NotFoundError struct {
	Kind string // "service", "job", or "file"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Client is the top-level Slivka client. It owns the service catalog cache
// and constructs Service, Job, and File handles bound to the same transport.
// All methods that hit the network take a context; the configured timeouts
// are applied on top of it.
type Client struct {
	cfg   *config.Config
	rest  *rest.Client
	cache *serviceCache
}

// New initializes a Client with a validated configuration. Timeouts get
// default values; an invalid configuration is an error. Extra rest options
// (such as rest.WithDoer) are forwarded to the transport.
func New(cfg *config.Config, opts ...rest.Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	transport, err := rest.NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:  cfg,
		rest: transport,
	}
	c.cache = newServiceCache(c)

	if cfg.Debug {
		zap.L().Debug("client initialized", zap.String("base_url", transport.BaseURL()))
	}
	return c, nil
}

// BaseURL returns the resolved server base URL.
func (c *Client) BaseURL() string {
	return c.rest.BaseURL()
}

// Version fetches the server and API versions from the version endpoint and
// combines them with the static client library version. A non-2xx response
// is surfaced verbatim as an *rest.HTTPStatusError; a 404 here usually means
// the base URL is missing its trailing slash and the error says so.
func (c *Client) Version(ctx context.Context) (*model.Version, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Request)
	defer cancel()

	var wire model.VersionResponse
	if err := c.rest.GetJSON(ctx, "api/version", &wire); err != nil {
		return nil, err
	}
	return &model.Version{
		Client: config.Version,
		Server: wire.SlivkaVersion,
		API:    wire.APIVersion,
	}, nil
}

// Services returns the cached service catalog, fetching it from the server
// on first access only.
func (c *Client) Services(ctx context.Context) ([]*Service, error) {
	return c.cache.services(ctx)
}

// ReloadServices unconditionally refetches the service catalog and atomically
// replaces the cache. Concurrent readers observe either the old or the new
// set, never a mix; on failure the prior cache stays intact.
func (c *Client) ReloadServices(ctx context.Context) ([]*Service, error) {
	return c.cache.reload(ctx)
}

// GetService looks a service up by id in the current catalog, loading the
// catalog if needed. Unknown ids return a *NotFoundError.
func (c *Client) GetService(ctx context.Context, id string) (*Service, error) {
	return c.cache.get(ctx, id)
}

// SubmitJob submits a job to the identified service. See Service.Submit.
func (c *Client) SubmitJob(ctx context.Context, serviceID string, data map[string]any, files map[string]any) (*Job, error) {
	svc, err := c.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return svc.Submit(ctx, data, files)
}

// GetJob reconstructs a job handle purely from its id with one metadata
// fetch. No prior in-memory state is required; the server is authoritative.
func (c *Client) GetJob(ctx context.Context, id string) (*Job, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Request)
	defer cancel()

	var meta model.Job
	if err := c.rest.GetJSON(ctx, "api/jobs/"+id, &meta); err != nil {
		if rest.IsNotFound(err) {
			return nil, &NotFoundError{Kind: "job", ID: id}
		}
		return nil, err
	}
	return c.newJob(meta), nil
}
