package sdk

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartongroup/slivka-go/internal/testutil/slivkatest"
	"github.com/bartongroup/slivka-go/pkg/model"
)

// completedJobWithResult submits a job, completes it and attaches out.txt.
func completedJobWithResult(t *testing.T, srv *slivkatest.Server, client *Client, content []byte) (*Job, string) {
	t.Helper()
	job, err := client.SubmitJob(context.Background(), "aligner",
		map[string]any{"param0": 1, "param1": "x"},
		map[string]any{"input0": []byte("in")},
	)
	require.NoError(t, err)
	srv.SetJobStatus(job.ID(), model.StateCompleted)
	fileID := srv.AttachResult(job.ID(), "out.txt", "output", "text/plain", content)
	return job, fileID
}

func TestFileDump_Stream(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	job, fileID := completedJobWithResult(t, srv, client, []byte("result bytes"))
	files, err := job.Results(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)

	// Metadata listing alone never touches the content endpoint.
	assert.Equal(t, 0, srv.ContentFetchCount(fileID))

	var buf bytes.Buffer
	require.NoError(t, files[0].Dump(ctx, StreamTarget{W: &buf}))
	assert.Equal(t, "result bytes", buf.String())
	assert.Equal(t, 1, srv.ContentFetchCount(fileID))

	// Content is not cached: every dump streams again.
	require.NoError(t, files[0].Dump(ctx, StreamTarget{W: &buf}))
	assert.Equal(t, 2, srv.ContentFetchCount(fileID))
}

func TestFileDump_PathTruncates(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	job, fileID := completedJobWithResult(t, srv, client, []byte("first version, long"))
	files, err := job.Results(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)

	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, files[0].Dump(ctx, PathTarget{Path: path}))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first version, long", string(got))

	// A second dump replaces the file instead of appending.
	srv.SetFileContent(fileID, []byte("second"))
	require.NoError(t, files[0].Dump(ctx, PathTarget{Path: path}))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestFileDump_StreamAppends(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	job, _ := completedJobWithResult(t, srv, client, []byte("chunk"))
	files, err := job.Results(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)

	buf := bytes.NewBufferString("prefix ")
	require.NoError(t, files[0].Dump(ctx, StreamTarget{W: buf}))
	assert.Equal(t, "prefix chunk", buf.String())
}

func TestUploadFile(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	uploaded, err := client.UploadFile(ctx, "query.fasta", []byte(">seq\nACGT\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, uploaded.ID)
	assert.Equal(t, "query.fasta", uploaded.Label)

	var buf bytes.Buffer
	require.NoError(t, uploaded.Dump(ctx, StreamTarget{W: &buf}))
	assert.Equal(t, ">seq\nACGT\n", buf.String())

	// An uploaded file satisfies a file parameter by reference.
	job, err := client.SubmitJob(ctx, "aligner",
		map[string]any{"param0": 1, "param1": "x", "input0": uploaded.File},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []string{uploaded.ID}, srv.SubmittedFields(job.ID())["input0"])
}

func TestGetFile(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	_, fileID := completedJobWithResult(t, srv, client, []byte("stored"))

	f, err := client.GetFile(ctx, fileID)
	require.NoError(t, err)
	assert.Equal(t, "out.txt", f.Path)

	_, err = client.GetFile(ctx, "no-such-file")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "file", nf.Kind)
}
