package sdk

import (
	"context"
	"sync"
	"time"

	"github.com/bartongroup/slivka-go/pkg/model"
)

// Job is a handle to one submitted job. The server is the source of truth:
// a handle holds only cached snapshots (status metadata and the result list)
// plus the timestamps of their last fetches, and can always be rebuilt from
// the job id via Client.GetJob.
//
// Status and Results are pull-based with a per-resource throttle: an access
// within the poll interval of the previous fetch returns the cached snapshot
// without a network call; a later access refreshes synchronously first. Each
// resource keeps its own timestamp, so refreshing the status does not reset
// the results throttle. There is no background polling.
//
// A Job is safe for concurrent use; refreshes are serialized and a failed
// refresh leaves the prior snapshot intact.
type Job struct {
	client   *Client
	interval time.Duration
	now      func() time.Time

	mu             sync.Mutex
	meta           model.Job
	results        []*File
	statusFetched  time.Time
	resultsFetched time.Time
}

// newJob wraps freshly fetched job metadata. The status throttle starts now
// since the metadata is one fetch old at most.
func (c *Client) newJob(meta model.Job) *Job {
	j := &Job{
		client:   c,
		interval: c.cfg.Timeouts.PollInterval,
		now:      time.Now,
		meta:     meta,
	}
	j.statusFetched = j.now()
	return j
}

// ID returns the server-assigned job identifier.
func (j *Job) ID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.meta.ID
}

// ServiceID returns the id of the service the job was submitted to.
func (j *Job) ServiceID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.meta.Service
}

// Parameters returns the parameter values recorded by the server at
// submission.
func (j *Job) Parameters() map[string]any {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.meta.Parameters
}

// SubmissionTime returns when the server accepted the job.
func (j *Job) SubmissionTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.meta.SubmissionTime.Time
}

// Status returns the job state, refreshing it from the server when the poll
// interval has elapsed since the last status fetch. When a refresh fails the
// previous cached state is returned together with the error. Terminal states
// are not special-cased: a completed job still refreshes at most once per
// interval on access.
func (j *Job) Status(ctx context.Context) (model.JobState, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	err := j.maybeRefreshLocked(ctx)
	return j.meta.State(), err
}

// CompletionTime returns when the job reached a terminal state, or the zero
// time while it has not. It shares the status snapshot and throttle.
func (j *Job) CompletionTime(ctx context.Context) (time.Time, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	err := j.maybeRefreshLocked(ctx)
	return j.meta.CompletionTime.Time, err
}

// Refresh forces a status fetch regardless of the throttle.
func (j *Job) Refresh(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.refreshLocked(ctx)
}

// Results returns the job's result files, refreshing the list from the
// server when the poll interval has elapsed since the last results fetch.
// The result list has its own timestamp, independent of the status throttle.
// When a refresh fails the previous cached list is returned with the error.
func (j *Job) Results(ctx context.Context) ([]*File, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.resultsFetched.IsZero() && j.now().Sub(j.resultsFetched) < j.interval {
		return j.results, nil
	}

	c := j.client
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Request)
	defer cancel()

	var wire model.FileList
	if err := c.rest.GetJSON(ctx, "api/jobs/"+j.meta.ID+"/files", &wire); err != nil {
		return j.results, err
	}

	files := make([]*File, 0, len(wire.Files))
	for _, meta := range wire.Files {
		files = append(files, &File{File: meta, client: c})
	}
	j.results = files
	j.resultsFetched = j.now()
	return j.results, nil
}

// maybeRefreshLocked refreshes the status snapshot when the poll interval has
// elapsed. The caller must hold j.mu.
func (j *Job) maybeRefreshLocked(ctx context.Context) error {
	if j.now().Sub(j.statusFetched) < j.interval {
		return nil
	}
	return j.refreshLocked(ctx)
}

// refreshLocked fetches a fresh metadata snapshot and replaces the cache
// atomically. On failure the prior snapshot and its timestamp are kept, so
// the fetch history stays monotonic.
func (j *Job) refreshLocked(ctx context.Context) error {
	c := j.client
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Request)
	defer cancel()

	var meta model.Job
	if err := c.rest.GetJSON(ctx, "api/jobs/"+j.meta.ID, &meta); err != nil {
		return err
	}
	j.meta = meta
	j.statusFetched = j.now()
	return nil
}
