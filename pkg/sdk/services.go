package sdk

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bartongroup/slivka-go/pkg/form"
	"github.com/bartongroup/slivka-go/pkg/model"
	"github.com/bartongroup/slivka-go/pkg/rest"
)

// serviceCache holds the service catalog: loaded lazily on first access,
// replaced wholesale on reload, never patched in place. The mutex serializes
// loads and the swap so readers never observe a half-updated catalog.
type serviceCache struct {
	client *Client

	mu     sync.Mutex
	loaded bool
	list   []*Service
	index  map[string]*Service
}

func newServiceCache(client *Client) *serviceCache {
	return &serviceCache{client: client}
}

func (sc *serviceCache) services(ctx context.Context) ([]*Service, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.loaded {
		if err := sc.fetchLocked(ctx); err != nil {
			return nil, err
		}
	}
	return sc.list, nil
}

func (sc *serviceCache) reload(ctx context.Context) ([]*Service, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if err := sc.fetchLocked(ctx); err != nil {
		return nil, err
	}
	return sc.list, nil
}

func (sc *serviceCache) get(ctx context.Context, id string) (*Service, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if !sc.loaded {
		if err := sc.fetchLocked(ctx); err != nil {
			return nil, err
		}
	}
	if svc, ok := sc.index[id]; ok {
		return svc, nil
	}
	return nil, &NotFoundError{Kind: "service", ID: id}
}

// fetchLocked performs the single network read and swaps in the new catalog.
// On failure the previous catalog, if any, stays in place.
func (sc *serviceCache) fetchLocked(ctx context.Context) error {
	c := sc.client
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Request)
	defer cancel()

	var wire model.ServiceList
	if err := c.rest.GetJSON(ctx, "api/services", &wire); err != nil {
		return err
	}

	list := make([]*Service, 0, len(wire.Services))
	index := make(map[string]*Service, len(wire.Services))
	for _, meta := range wire.Services {
		svc := &Service{Service: meta, client: c}
		list = append(list, svc)
		index[svc.ID] = svc
	}

	sc.list = list
	sc.index = index
	sc.loaded = true

	if c.cfg.Debug {
		zap.L().Debug("service catalog loaded", zap.Int("count", len(list)))
	}
	return nil
}

// Service is a client-side handle to one remote service: the immutable
// metadata snapshot plus the operations scoped to it.
type Service struct {
	*model.Service
	client *Client
}

// NewForm returns an empty submission form bound to this service's parameter
// schema, for callers that prefer assembling values incrementally over the
// map-based Submit.
func (s *Service) NewForm() *form.Form {
	return form.New(s.Service)
}

// Submit validates data and files against the declared parameter set, encodes
// them as one multipart body, and posts a new job.
//
// data maps parameter ids to scalar values (or slices for array parameters);
// files maps file-parameter ids to content as io.Reader or []byte. Local
// validation reports every invalid field of the attempt in one
// *form.SubmissionError; a server-side 422 is parsed into the same type. On
// success the returned job handle carries the server-assigned id and the
// submission time.
func (s *Service) Submit(ctx context.Context, data map[string]any, files map[string]any) (*Job, error) {
	f := s.NewForm()
	f.Insert(data, files)
	return s.submitForm(ctx, f)
}

// SubmitForm submits a form previously built with NewForm.
func (s *Service) SubmitForm(ctx context.Context, f *form.Form) (*Job, error) {
	return s.submitForm(ctx, f)
}

func (s *Service) submitForm(ctx context.Context, f *form.Form) (*Job, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	contentType, body, err := f.Encode()
	if err != nil {
		return nil, err
	}

	c := s.client
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Submit)
	defer cancel()

	var meta model.Job
	err = c.rest.PostMultipart(ctx, jobsRef(s.URL), contentType, body, &meta)
	if err != nil {
		if sub, ok := submissionErrorFrom(err); ok {
			return nil, sub
		}
		return nil, err
	}

	zap.L().Info("job submitted",
		zap.String("service", s.ID),
		zap.String("job", meta.ID))
	return c.newJob(meta), nil
}

// jobsRef appends the job collection segment to a service resource URL.
func jobsRef(serviceURL string) string {
	return strings.TrimSuffix(serviceURL, "/") + "/jobs"
}

// submissionErrorFrom converts an HTTP 422 validation response into a
// *form.SubmissionError. Other errors pass through unchanged.
func submissionErrorFrom(err error) (*form.SubmissionError, bool) {
	var se *rest.HTTPStatusError
	if !errors.As(err, &se) || se.StatusCode != 422 {
		return nil, false
	}
	return form.ParseSubmissionError(se.Body)
}
