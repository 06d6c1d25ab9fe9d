package sdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"go.uber.org/zap"

	"github.com/bartongroup/slivka-go/pkg/model"
	"github.com/bartongroup/slivka-go/pkg/rest"
)

// File is a lazy handle to a server-side file. It carries only the
// descriptor; content is streamed on demand by Dump and never cached
// locally. A File obtained from one job's results can be passed as a
// file-parameter value when submitting another job.
type File struct {
	*model.File
	client *Client
}

// DumpTarget selects where Dump writes the file content. It is a closed set:
// StreamTarget appends to an open writer, PathTarget creates or truncates a
// file at a path.
type DumpTarget interface {
	dumpTarget()
}

// StreamTarget directs Dump at an open writer. Content is appended
// incrementally; the writer is not closed.
type StreamTarget struct {
	W io.Writer
}

func (StreamTarget) dumpTarget() {}

// PathTarget directs Dump at a filesystem path. The file is created if
// missing and truncated if present, and is closed on every exit path.
type PathTarget struct {
	Path string
}

func (PathTarget) dumpTarget() {}

// Dump streams the remote content into the target chunk by chunk; the whole
// file is never buffered in memory. A transport or HTTP failure aborts the
// dump and is returned as-is; output written before the failure is left in
// place, so callers needing atomicity should dump to a temporary path and
// rename.
func (f *File) Dump(ctx context.Context, target DumpTarget) error {
	switch t := target.(type) {
	case StreamTarget:
		return f.stream(ctx, t.W)
	case PathTarget:
		out, err := os.Create(t.Path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", t.Path, err)
		}
		streamErr := f.stream(ctx, out)
		if closeErr := out.Close(); streamErr == nil && closeErr != nil {
			return fmt.Errorf("failed to close %s: %w", t.Path, closeErr)
		}
		return streamErr
	default:
		return fmt.Errorf("unsupported dump target %T", target)
	}
}

func (f *File) stream(ctx context.Context, w io.Writer) error {
	c := f.client
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Download)
	defer cancel()

	body, err := c.rest.GetStream(ctx, f.ContentURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := body.Close(); err != nil {
			zap.L().Error("failed to close download stream", zap.Error(err))
		}
	}()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("download of %s aborted: %w", f.ID, err)
	}
	return nil
}

// UploadFile sends local content to the server's file store and returns the
// descriptor of the stored file. The returned handle can satisfy file
// parameters of later submissions without re-uploading the content. content
// must be an io.Reader or []byte.
func (c *Client) UploadFile(ctx context.Context, name string, content any) (*File, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload body: %w", err)
	}
	switch src := content.(type) {
	case []byte:
		_, err = part.Write(src)
	case io.Reader:
		_, err = io.Copy(part, src)
	default:
		return nil, fmt.Errorf("unsupported upload content type %T; use io.Reader or []byte", content)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload body: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Submit)
	defer cancel()

	var meta model.File
	if err := c.rest.PostMultipart(ctx, "api/files", w.FormDataContentType(), buf, &meta); err != nil {
		return nil, err
	}
	return &File{File: &meta, client: c}, nil
}

// GetFile reconstructs a file handle from its id with one metadata fetch.
func (c *Client) GetFile(ctx context.Context, id string) (*File, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeouts.Request)
	defer cancel()

	var meta model.File
	if err := c.rest.GetJSON(ctx, "api/files/"+id, &meta); err != nil {
		if rest.IsNotFound(err) {
			return nil, &NotFoundError{Kind: "file", ID: id}
		}
		return nil, err
	}
	return &File{File: &meta, client: c}, nil
}
