// Package model defines data structures for the Slivka REST API: services,
// parameters, presets, jobs, result files, and version information. These
// structs mirror the JSON documents returned by the server.
package model

// Service describes a remotely hosted job type and its parameter schema as
// returned by GET api/services. Instances are immutable snapshots; the
// catalog is recreated wholesale on reload, never patched in place.
type Service struct {
	// URL is the service resource location, resolved against the client base
	// URL from the "@url" reference in the response.
	URL         string       `json:"@url"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Author      string       `json:"author"`
	Version     string       `json:"version"`
	License     string       `json:"license"`
	Classifiers []string     `json:"classifiers"`
	Parameters  []*Parameter `json:"parameters"`
	Presets     []Preset     `json:"presets"`
	Status      Status       `json:"status"`
}

// GetParameter returns the declared parameter with the given id, or nil when
// the service declares no such parameter.
func (s *Service) GetParameter(id string) *Parameter {
	for _, p := range s.Parameters {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// GetPreset returns the preset with the given id, or nil when the service
// declares no such preset.
func (s *Service) GetPreset(id string) *Preset {
	for i := range s.Presets {
		if s.Presets[i].ID == id {
			return &s.Presets[i]
		}
	}
	return nil
}

// Preset is a named, pre-filled set of parameter values for a service.
type Preset struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Values      map[string]any `json:"values"`
}

// StatusValue enumerates the operational states a service reports.
type StatusValue string

const (
	StatusOK      StatusValue = "OK"
	StatusWarning StatusValue = "WARNING"
	StatusDown    StatusValue = "DOWN"
)

// Status is a point-in-time health snapshot of a service. The server reports
// the error message under "errorMessage"; it is empty when the status is OK.
type Status struct {
	Status    StatusValue `json:"status"`
	Message   string      `json:"errorMessage"`
	Timestamp Timestamp   `json:"timestamp"`
}

// Version is the triple reported by Client.Version: the static client library
// version, the server software version, and the REST API version.
type Version struct {
	Client string
	Server string
	API    string
}

// VersionResponse is the wire form of GET api/version.
type VersionResponse struct {
	SlivkaVersion string `json:"slivkaVersion"`
	APIVersion    string `json:"APIVersion"`
}

// ServiceList is the envelope of GET api/services.
type ServiceList struct {
	Services []*Service `json:"services"`
}

// FileList is the envelope of GET api/jobs/{id}/files.
type FileList struct {
	Files []*File `json:"files"`
}

// ErrorDetail is one entry of the validation error list the server returns
// with a 422 response to a job submission.
type ErrorDetail struct {
	Parameter string `json:"parameter"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// SubmissionErrorBody is the wire form of a 422 submission response.
type SubmissionErrorBody struct {
	Errors []ErrorDetail `json:"errors"`
}
