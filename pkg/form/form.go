// Package form builds and validates Slivka job submissions. It converts a
// parameter map plus a file map into a single multipart request body and
// reports every invalid field of an attempt at once through SubmissionError.
package form

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"

	"github.com/bartongroup/slivka-go/pkg/model"
)

// FileUpload is one local file attached to a submission. Content must be an
// io.Reader or a []byte buffer; other kinds are rejected during validation so
// that text values are never silently coerced into file content.
type FileUpload struct {
	// Name is the file name reported in the multipart part. Optional; the
	// parameter id is used when empty.
	Name    string
	Content any
}

// Form collects parameter values for one service and encodes them into a
// multipart body. A Form is not safe for concurrent use.
type Form struct {
	service *model.Service
	values  map[string][]any
	files   map[string]FileUpload
	// extraOrder remembers the insertion order of ids the service does not
	// declare, so validation reports them deterministically.
	extraOrder []string
}

// New creates an empty form for the given service schema.
func New(service *model.Service) *Form {
	return &Form{
		service: service,
		values:  make(map[string][]any),
		files:   make(map[string]FileUpload),
	}
}

// Set replaces the value of a parameter. Slice values assign each element as
// a repeated field for array parameters.
func (f *Form) Set(id string, value any) {
	f.track(id)
	f.values[id] = flatten(value)
}

// Add appends one value to a parameter, for array parameters that take the
// same field several times.
func (f *Form) Add(id string, value any) {
	f.track(id)
	f.values[id] = append(f.values[id], value)
}

// SetFile attaches local file content to a file parameter. content must be an
// io.Reader or []byte.
func (f *Form) SetFile(id string, name string, content any) {
	f.track(id)
	f.files[id] = FileUpload{Name: name, Content: content}
}

// ApplyPreset assigns every value of a service preset. Values set afterwards
// override the preset.
func (f *Form) ApplyPreset(p *model.Preset) {
	for id, value := range p.Values {
		f.Set(id, value)
	}
}

// Insert bulk-assigns parameter values and file contents, mirroring the
// submit_job(data, files) call shape.
func (f *Form) Insert(data map[string]any, files map[string]any) {
	for id, value := range data {
		f.Set(id, value)
	}
	for id, content := range files {
		if up, ok := content.(FileUpload); ok {
			f.SetFile(id, up.Name, up.Content)
			continue
		}
		f.SetFile(id, "", content)
	}
}

func (f *Form) track(id string) {
	if f.service.GetParameter(id) != nil {
		return
	}
	for _, seen := range f.extraOrder {
		if seen == id {
			return
		}
	}
	f.extraOrder = append(f.extraOrder, id)
}

// Validate checks every assigned value against the service's parameter
// schema. It never stops at the first problem: the returned *SubmissionError
// lists one entry per invalid field, declared parameters first in schema
// order, then unknown ids in insertion order. A nil return means the form is
// ready to encode.
func (f *Form) Validate() error {
	var errs []*ParameterError

	for _, p := range f.service.Parameters {
		values, hasValue := f.values[p.ID]
		upload, hasFile := f.files[p.ID]

		if hasFile {
			if p.Type != model.TypeFile {
				errs = append(errs, &ParameterError{p.ID, "only file parameters accept file content", CodeValue})
				continue
			}
			switch upload.Content.(type) {
			case io.Reader, []byte:
			default:
				errs = append(errs, &ParameterError{
					p.ID,
					fmt.Sprintf("unsupported file content type %T; use io.Reader or []byte", upload.Content),
					CodeValue,
				})
			}
			continue
		}

		if !hasValue || len(values) == 0 {
			if p.Required && p.Default == nil {
				errs = append(errs, &ParameterError{p.ID, "parameter is required", CodeRequired})
			}
			continue
		}

		// A false flag counts as absent for a required flag parameter.
		if p.Required && p.Type == model.TypeFlag && len(values) == 1 {
			if flag, ok := values[0].(bool); ok && !flag {
				errs = append(errs, &ParameterError{p.ID, "parameter is required", CodeRequired})
				continue
			}
		}

		if len(values) > 1 && !p.Array {
			errs = append(errs, &ParameterError{p.ID, "multiple values for a non-array parameter", CodeInvalid})
			continue
		}

		for _, v := range values {
			if err := checkValue(p, v); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, id := range f.extraOrder {
		errs = append(errs, &ParameterError{id, "service declares no such parameter", CodeInvalid})
	}

	if len(errs) > 0 {
		return &SubmissionError{Errors: errs}
	}
	return nil
}

// Encode serializes the form into a multipart body. Scalar values are
// stringified, array parameters repeat the field, defaults fill in omitted
// optional parameters, false flags are left out, and file uploads become
// binary parts. Encode assumes Validate has passed; encoding an invalid form
// may fail on unsupported file content.
func (f *Form) Encode() (contentType string, body *bytes.Buffer, err error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, p := range f.service.Parameters {
		values, hasValue := f.values[p.ID]
		if !hasValue && p.Default != nil {
			values = flatten(p.Default)
		}
		for _, v := range values {
			if flag, ok := v.(bool); ok && p.Type == model.TypeFlag && !flag {
				continue
			}
			if err := w.WriteField(p.ID, stringify(v)); err != nil {
				return "", nil, fmt.Errorf("failed to encode field %q: %w", p.ID, err)
			}
		}
	}

	for _, p := range f.service.Parameters {
		upload, ok := f.files[p.ID]
		if !ok {
			continue
		}
		name := upload.Name
		if name == "" {
			name = p.ID
		}
		part, err := w.CreateFormFile(p.ID, name)
		if err != nil {
			return "", nil, fmt.Errorf("failed to create file part %q: %w", p.ID, err)
		}
		switch content := upload.Content.(type) {
		case []byte:
			if _, err := part.Write(content); err != nil {
				return "", nil, fmt.Errorf("failed to write file part %q: %w", p.ID, err)
			}
		case io.Reader:
			if _, err := io.Copy(part, content); err != nil {
				return "", nil, fmt.Errorf("failed to stream file part %q: %w", p.ID, err)
			}
		default:
			return "", nil, fmt.Errorf("unsupported file content type %T for %q", upload.Content, p.ID)
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return w.FormDataContentType(), buf, nil
}

// flatten expands slice values into individual entries so array parameters
// can be assigned in one call. []byte stays a single value.
func flatten(value any) []any {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return []any{value}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
