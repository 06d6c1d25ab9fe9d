package sdk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartongroup/slivka-go/internal/testutil/slivkatest"
	"github.com/bartongroup/slivka-go/pkg/form"
	"github.com/bartongroup/slivka-go/pkg/model"
)

func TestSubmit(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	job, err := client.SubmitJob(ctx, "aligner",
		map[string]any{"param0": 13, "param1": "foobar"},
		map[string]any{"input0": []byte("file content")},
	)
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID())
	assert.False(t, job.SubmissionTime().IsZero())
	assert.Equal(t, "aligner", job.ServiceID())

	// The server saw the stringified fields and the binary file part.
	fields := srv.SubmittedFields(job.ID())
	assert.Equal(t, []string{"13"}, fields["param0"])
	assert.Equal(t, []string{"foobar"}, fields["param1"])
	assert.Equal(t, []byte("file content"), srv.SubmittedFiles(job.ID())["input0"])
}

func TestSubmit_StreamedFile(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)

	job, err := client.SubmitJob(context.Background(), "aligner",
		map[string]any{"param0": 1, "param1": "x"},
		map[string]any{"input0": strings.NewReader("streamed bytes")},
	)
	require.NoError(t, err)
	assert.Equal(t, []byte("streamed bytes"), srv.SubmittedFiles(job.ID())["input0"])
}

// TestSubmit_LocalValidationAggregatesErrors verifies that every invalid
// field of one attempt is reported, without any request reaching the server.
func TestSubmit_LocalValidationAggregatesErrors(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)

	_, err := client.SubmitJob(context.Background(),
		"aligner",
		map[string]any{"param0": -5, "bogus": 1}, // below min + undeclared; param1, input0 missing
		nil,
	)

	var sub *form.SubmissionError
	require.ErrorAs(t, err, &sub)

	params := make(map[string]bool)
	for _, pe := range sub.Errors {
		params[pe.Parameter] = true
	}
	assert.Equal(t, map[string]bool{
		"param0": true,
		"param1": true,
		"input0": true,
		"bogus":  true,
	}, params)
}

// TestSubmit_ServerValidationParsed verifies that a 422 response body is
// parsed into the same SubmissionError type as local validation.
func TestSubmit_ServerValidationParsed(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	// The stub requires input0, but the client-side schema does not, forcing
	// validation to happen on the server.
	relaxed := fixtureService()
	relaxed.Parameters[2].Required = false
	srv.AddService(fixtureService())

	client := newTestClient(t, srv)
	svc := &Service{Service: relaxed, client: client}
	relaxed.URL = "/api/services/aligner"

	_, err := svc.Submit(context.Background(),
		map[string]any{"param0": 1, "param1": "x"}, nil)

	var sub *form.SubmissionError
	require.ErrorAs(t, err, &sub)
	require.Len(t, sub.Errors, 1)
	assert.Equal(t, "input0", sub.Errors[0].Parameter)
	assert.Equal(t, "required", sub.Errors[0].Code)
}

// TestSubmit_FileReferenceRoundTrip verifies that a result file of one job
// can be supplied as the file parameter of the next submission.
func TestSubmit_FileReferenceRoundTrip(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	jobA, err := client.SubmitJob(ctx, "aligner",
		map[string]any{"param0": 1, "param1": "first"},
		map[string]any{"input0": []byte("original")},
	)
	require.NoError(t, err)

	srv.SetJobStatus(jobA.ID(), model.StateCompleted)
	srv.AttachResult(jobA.ID(), "out.txt", "output", "text/plain", []byte("derived"))

	results, err := jobA.Results(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	jobB, err := client.SubmitJob(ctx, "aligner",
		map[string]any{"param0": 2, "param1": "second", "input0": results[0].File},
		nil,
	)
	require.NoError(t, err)

	// The reference travels as the file id in the data fields.
	fields := srv.SubmittedFields(jobB.ID())
	assert.Equal(t, []string{results[0].ID}, fields["input0"])
}

func TestServiceNewForm(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	svc, err := client.GetService(ctx, "aligner")
	require.NoError(t, err)

	f := svc.NewForm()
	f.Set("param0", 7)
	f.Set("param1", "built incrementally")
	f.SetFile("input0", "in.txt", []byte("abc"))

	job, err := svc.SubmitForm(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, srv.SubmittedFields(job.ID())["param0"])
}
