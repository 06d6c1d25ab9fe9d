package sdk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartongroup/slivka-go/internal/testutil/slivkatest"
	"github.com/bartongroup/slivka-go/pkg/config"
	"github.com/bartongroup/slivka-go/pkg/model"
	"github.com/bartongroup/slivka-go/pkg/rest"
)

func intPtr(n int64) *int64 { return &n }

// fixtureService declares the three-parameter schema used across the tests.
func fixtureService() *model.Service {
	return &model.Service{
		ID:      "aligner",
		Name:    "Test aligner",
		Author:  "Barton Group",
		Version: "1.0",
		Parameters: []*model.Parameter{
			{
				ID: "param0", Type: model.TypeInteger, Name: "Param 0", Required: true,
				Integer: &model.IntegerConstraints{Min: intPtr(0)},
			},
			{ID: "param1", Type: model.TypeText, Name: "Param 1", Required: true},
			{ID: "input0", Type: model.TypeFile, Name: "Input", Required: true},
		},
		Status: model.Status{Status: model.StatusOK},
	}
}

func newTestClient(t *testing.T, srv *slivkatest.Server) *Client {
	t.Helper()
	client, err := New(&config.Config{BaseURL: srv.BaseURL()})
	require.NoError(t, err)
	return client
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(&config.Config{})
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	v, err := client.Version(context.Background())
	require.NoError(t, err)

	assert.Equal(t, config.Version, v.Client)
	assert.Equal(t, "2.2.2", v.Server)
	assert.Equal(t, "1.1", v.API)
}

// TestVersion_MissingSlashDiagnostic verifies that a 404 from a wrong base
// URL carries the trailing-slash hint verbatim to the caller.
func TestVersion_MissingSlashDiagnostic(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()

	// A base path that exists on no route produces 404s for every endpoint,
	// which is what a missing trailing slash looks like from the client.
	client, err := New(&config.Config{BaseURL: srv.URL + "/wrongroot/"})
	require.NoError(t, err)

	_, err = client.Version(context.Background())
	require.Error(t, err)

	se, ok := rest.StatusError(err)
	require.True(t, ok)
	assert.Equal(t, 404, se.StatusCode)
	assert.Contains(t, err.Error(), "trailing slash")
}

// TestServices_SingleFetchPerCacheLifetime verifies that N reads cost one
// network request and an explicit reload costs exactly one more.
func TestServices_SingleFetchPerCacheLifetime(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		services, err := client.Services(ctx)
		require.NoError(t, err)
		require.Len(t, services, 1)
	}
	assert.Equal(t, 1, srv.ServicesFetchCount())

	// GetService hits the same cache.
	_, err := client.GetService(ctx, "aligner")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.ServicesFetchCount())

	_, err = client.ReloadServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.ServicesFetchCount())

	_, err = client.Services(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.ServicesFetchCount())
}

func TestGetService_NotFound(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)

	_, err := client.GetService(context.Background(), "no-such-service")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "service", nf.Kind)
	assert.Equal(t, "no-such-service", nf.ID)
}

// TestReloadServices_FailureKeepsCache verifies that a failed reload leaves
// the previously cached catalog intact.
func TestReloadServices_FailureKeepsCache(t *testing.T) {
	srv := slivkatest.NewServer()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	services, err := client.Services(ctx)
	require.NoError(t, err)
	require.Len(t, services, 1)

	srv.Close()

	_, err = client.ReloadServices(ctx)
	require.Error(t, err)

	// The old catalog is still served from cache.
	services, err = client.Services(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 1)
}

func TestGetJob_NotFound(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv)

	_, err := client.GetJob(context.Background(), "missing-job")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "job", nf.Kind)
}

// TestGetJob_ReconstructsFromID verifies that a handle can be rebuilt with
// no prior in-memory state.
func TestGetJob_ReconstructsFromID(t *testing.T) {
	srv := slivkatest.NewServer()
	defer srv.Close()
	srv.AddService(fixtureService())
	client := newTestClient(t, srv)
	ctx := context.Background()

	submitted, err := client.SubmitJob(ctx, "aligner",
		map[string]any{"param0": 13, "param1": "foobar"},
		map[string]any{"input0": []byte("content")},
	)
	require.NoError(t, err)

	// A fresh client has no state beyond the id.
	other := newTestClient(t, srv)
	restored, err := other.GetJob(ctx, submitted.ID())
	require.NoError(t, err)

	assert.Equal(t, submitted.ID(), restored.ID())
	assert.Equal(t, "aligner", restored.ServiceID())
	assert.False(t, restored.SubmissionTime().IsZero())
}
