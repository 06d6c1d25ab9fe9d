// Package rest is the HTTP transport collaborator of the Slivka client.
//
// The rest of the SDK never touches net/http directly; it goes through
// rest.Client, which handles:
//
//   - resolving API paths and server-provided "@url" references against the
//     configured base URL
//   - GET requests with JSON decoding (GetJSON) or raw body streaming
//     (GetStream)
//   - POST requests with multipart bodies (PostMultipart)
//   - mapping failures to the typed errors TransportError (no response
//     received) and HTTPStatusError (non-2xx response, with a bounded body
//     excerpt)
//
// The transport performs no retries and no caching; every call maps to
// exactly one HTTP request. Deadlines come from the context passed by the
// caller, not from the transport itself.
//
// # Testing
//
// The Doer interface decouples the client from *http.Client:
//
//	client, _ := rest.NewClient(cfg, rest.WithDoer(stubDoer))
//
// In-process servers from net/http/httptest work without any option since
// their URL is used as the base URL.
package rest
