// Package sdk provides the high-level client for Slivka job-processing
// servers.
//
// A Slivka server hosts a catalog of services, each with a declared
// parameter schema; clients submit parametrized jobs, poll their status, and
// download result files. This package composes the lower layers (pkg/rest
// transport, pkg/model wire types, pkg/form submission encoding) behind
// four handle types: Client, Service, Job, and File.
//
// # Getting Started
//
//	cfg := &config.Config{BaseURL: "http://example.org/slivka/"}
//	client, err := sdk.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	services, err := client.Services(ctx)
//	svc, err := client.GetService(ctx, "clustalo")
//
//	job, err := svc.Submit(ctx,
//		map[string]any{"iterations": 3},
//		map[string]any{"input": fastaBytes},
//	)
//
//	for {
//		state, err := job.Status(ctx)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if state.Finished() {
//			break
//		}
//		time.Sleep(time.Second)
//	}
//
//	results, err := job.Results(ctx)
//	for _, file := range results {
//		err := file.Dump(ctx, sdk.PathTarget{Path: file.Path})
//	}
//
// # Service Catalog Cache
//
// The catalog is fetched once, on first access, and served from memory
// afterwards: any number of Services/GetService calls cost one network read
// per cache lifetime. ReloadServices refetches explicitly and swaps the
// whole catalog atomically. Service metadata changes rarely, so the cache
// avoids a round trip per access while reload remains the escape hatch.
//
// # Job Polling
//
// Job.Status and Job.Results are throttled per handle and per resource: an
// access within the poll interval (default 5s, config.Timeouts.PollInterval)
// of the previous fetch returns the cached snapshot with zero network calls.
// The model is synchronous and pull-based; nothing polls in the background.
// Tight loops over Status are therefore safe, they cannot exceed one request
// per interval.
//
// # Error Handling
//
// Failures carry types: *rest.TransportError for connection failures,
// *rest.HTTPStatusError for non-2xx responses, *form.SubmissionError for
// validation failures (local and server-side alike, always listing every
// invalid field), and *NotFoundError for unknown ids. The SDK retries
// nothing and recovers nothing locally; a failed reload or refresh leaves
// the previously cached state untouched.
//
// # Logging
//
// The package installs a default global zap logger in init. Replace it with
// zap.ReplaceGlobals to integrate with application logging.
package sdk
