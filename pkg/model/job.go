package model

import (
	"encoding/json"
	"strings"
	"time"
)

// timeLayout is the timestamp format used throughout the Slivka API.
const timeLayout = "2006-01-02T15:04:05"

// Timestamp wraps time.Time with the Slivka wire format, which carries
// neither sub-second precision nor a zone offset.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON parses a Slivka timestamp string; JSON null leaves the zero
// value in place.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timeLayout, *s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON renders the timestamp in the Slivka wire format, or null for
// the zero value.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(timeLayout))
}

// JobState enumerates the lifecycle states a job passes through on the
// server. The client never decides transitions; it only mirrors them.
type JobState string

const (
	// StatePending: request was submitted successfully and awaits processing.
	StatePending JobState = "PENDING"
	// StateRejected: request was rejected due to resource limitations.
	StateRejected JobState = "REJECTED"
	// StateAccepted: request was accepted and is scheduled for execution.
	StateAccepted JobState = "ACCEPTED"
	// StateQueued: job was sent to the queuing system and waits for resources.
	StateQueued JobState = "QUEUED"
	// StateRunning: job is currently running.
	StateRunning JobState = "RUNNING"
	// StateCompleted: job has finished its execution successfully.
	StateCompleted JobState = "COMPLETED"
	// StateInterrupted: job was interrupted during execution.
	StateInterrupted JobState = "INTERRUPTED"
	// StateDeleted: job was deleted from the queuing system.
	StateDeleted JobState = "DELETED"
	// StateFailed: job finished with a non-zero exit code.
	StateFailed JobState = "FAILED"
	// StateError: job failed to run due to an internal error.
	StateError JobState = "ERROR"
	// StateUnknown: job status can not be determined.
	StateUnknown JobState = "UNKNOWN"
)

var knownStates = map[JobState]bool{
	StatePending: true, StateRejected: true, StateAccepted: true,
	StateQueued: true, StateRunning: true, StateCompleted: true,
	StateInterrupted: true, StateDeleted: true, StateFailed: true,
	StateError: true, StateUnknown: true,
}

// ParseJobState normalizes a server-provided status string to a JobState.
// Unrecognized values map to StateUnknown.
func ParseJobState(s string) JobState {
	state := JobState(strings.ToUpper(s))
	if !knownStates[state] {
		return StateUnknown
	}
	return state
}

// Finished reports whether the state is terminal: the server will not move
// the job out of it.
func (s JobState) Finished() bool {
	switch s {
	case StateCompleted, StateInterrupted, StateDeleted, StateFailed, StateError, StateRejected:
		return true
	}
	return false
}

// Job is the wire metadata record of one submitted job, as returned by job
// submission and by GET api/jobs/{id}.
type Job struct {
	URL            string         `json:"@url"`
	ID             string         `json:"id"`
	Service        string         `json:"service"`
	Parameters     map[string]any `json:"parameters"`
	SubmissionTime Timestamp      `json:"submissionTime"`
	CompletionTime Timestamp      `json:"completionTime"`
	Status         string         `json:"status"`
}

// State returns the normalized job state.
func (j *Job) State() JobState {
	return ParseJobState(j.Status)
}

// File is a descriptor of a remote file, not the file's content. ContentURL
// points at the raw bytes; content is never cached locally.
type File struct {
	URL        string `json:"@url"`
	ContentURL string `json:"@content"`
	ID         string `json:"id"`
	JobID      string `json:"jobId"`
	Path       string `json:"path"`
	Label      string `json:"label"`
	MediaType  string `json:"mediaType"`
}
