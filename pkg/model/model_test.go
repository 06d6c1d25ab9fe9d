package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceJSON = `{
	"@url": "/api/services/clustalo",
	"id": "clustalo",
	"name": "Clustal Omega",
	"description": "Multiple sequence alignment",
	"author": "Sievers et al.",
	"version": "1.2.4",
	"license": "GPLv2",
	"classifiers": ["Topic :: Sequence analysis"],
	"parameters": [
		{
			"id": "input",
			"type": "file",
			"name": "Input file",
			"mediaType": "application/fasta"
		},
		{
			"id": "iterations",
			"type": "integer",
			"name": "Iterations",
			"required": false,
			"default": 1,
			"min": 0,
			"max": 5
		},
		{
			"id": "threshold",
			"type": "decimal",
			"name": "Threshold",
			"required": false,
			"min": 0.1,
			"max": 1.0,
			"maxExclusive": true
		},
		{
			"id": "outfmt",
			"type": "choice",
			"name": "Output format",
			"required": false,
			"choices": ["clustal", "fasta", "phylip"]
		},
		{
			"id": "dealign",
			"type": "flag",
			"name": "Dealign input",
			"required": false
		},
		{
			"id": "future",
			"type": "tensor",
			"name": "Mystery input",
			"required": false,
			"shape": [3, 3]
		}
	],
	"presets": [
		{"id": "fast", "name": "Fast", "description": "", "values": {"iterations": 1}}
	],
	"status": {
		"status": "OK",
		"errorMessage": "",
		"timestamp": "2024-03-01T12:30:00"
	}
}`

func TestServiceUnmarshal(t *testing.T) {
	var svc Service
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))

	assert.Equal(t, "clustalo", svc.ID)
	assert.Equal(t, "Clustal Omega", svc.Name)
	assert.Equal(t, StatusOK, svc.Status.Status)
	assert.Equal(t,
		time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		svc.Status.Timestamp.Time)
	require.Len(t, svc.Parameters, 6)
	require.Len(t, svc.Presets, 1)
	assert.Equal(t, map[string]any{"iterations": float64(1)}, svc.Presets[0].Values)
}

func TestParameterUnmarshal_File(t *testing.T) {
	var svc Service
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))

	p := svc.GetParameter("input")
	require.NotNil(t, p)
	assert.Equal(t, TypeFile, p.Type)
	// "required" omitted means required.
	assert.True(t, p.Required)
	require.NotNil(t, p.File)
	assert.Equal(t, "application/fasta", p.File.MediaType)
}

func TestParameterUnmarshal_Integer(t *testing.T) {
	var svc Service
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))

	p := svc.GetParameter("iterations")
	require.NotNil(t, p)
	assert.Equal(t, TypeInteger, p.Type)
	assert.False(t, p.Required)
	require.NotNil(t, p.Integer)
	require.NotNil(t, p.Integer.Min)
	require.NotNil(t, p.Integer.Max)
	assert.EqualValues(t, 0, *p.Integer.Min)
	assert.EqualValues(t, 5, *p.Integer.Max)
}

func TestParameterUnmarshal_Decimal(t *testing.T) {
	var svc Service
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))

	p := svc.GetParameter("threshold")
	require.NotNil(t, p)
	require.NotNil(t, p.Decimal)
	require.NotNil(t, p.Decimal.Min)
	require.NotNil(t, p.Decimal.Max)
	assert.Equal(t, "0.1", p.Decimal.Min.String())
	assert.Equal(t, "1", p.Decimal.Max.String())
	assert.False(t, p.Decimal.MinExclusive)
	assert.True(t, p.Decimal.MaxExclusive)
}

func TestParameterUnmarshal_Choice(t *testing.T) {
	var svc Service
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))

	p := svc.GetParameter("outfmt")
	require.NotNil(t, p)
	require.NotNil(t, p.Choice)
	assert.Equal(t, []string{"clustal", "fasta", "phylip"}, p.Choice.Choices)
}

// TestParameterUnmarshal_UnknownType verifies that parameters of types this
// client does not recognize survive decoding with their raw attributes.
func TestParameterUnmarshal_UnknownType(t *testing.T) {
	var svc Service
	require.NoError(t, json.Unmarshal([]byte(serviceJSON), &svc))

	p := svc.GetParameter("future")
	require.NotNil(t, p)
	assert.Equal(t, ParameterType("tensor"), p.Type)
	require.NotNil(t, p.Attributes)
	assert.Equal(t, []any{float64(3), float64(3)}, p.Attributes["shape"])
}

func TestJobUnmarshal(t *testing.T) {
	data := `{
		"@url": "/api/jobs/xyz",
		"id": "xyz",
		"service": "clustalo",
		"parameters": {"iterations": "2"},
		"submissionTime": "2024-03-01T08:00:00",
		"completionTime": null,
		"status": "running"
	}`
	var job Job
	require.NoError(t, json.Unmarshal([]byte(data), &job))

	assert.Equal(t, "xyz", job.ID)
	assert.Equal(t, StateRunning, job.State())
	assert.False(t, job.SubmissionTime.IsZero())
	assert.True(t, job.CompletionTime.IsZero())
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T08:00:00"`, string(out))

	var back Timestamp
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, ts.Time.Equal(back.Time))
}

func TestParseJobState(t *testing.T) {
	tests := []struct {
		in   string
		want JobState
	}{
		{in: "pending", want: StatePending},
		{in: "COMPLETED", want: StateCompleted},
		{in: "Failed", want: StateFailed},
		{in: "something-new", want: StateUnknown},
		{in: "", want: StateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseJobState(tt.in))
		})
	}
}

func TestJobStateFinished(t *testing.T) {
	finished := []JobState{StateCompleted, StateInterrupted, StateDeleted, StateFailed, StateError, StateRejected}
	for _, s := range finished {
		assert.True(t, s.Finished(), "state %s", s)
	}
	running := []JobState{StatePending, StateAccepted, StateQueued, StateRunning, StateUnknown}
	for _, s := range running {
		assert.False(t, s.Finished(), "state %s", s)
	}
}
