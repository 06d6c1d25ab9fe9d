// Package slivkatest provides an in-process stub Slivka server for tests.
// It serves the same JSON documents and multipart endpoints as a real server
// from in-memory fixtures and counts requests per endpoint so tests can
// assert on caching and throttling behavior.
package slivkatest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bartongroup/slivka-go/pkg/model"
)

// jobRecord is the server-side state of one submitted job.
type jobRecord struct {
	meta   model.Job
	fields map[string][]string
	files  map[string][]byte
}

// fileRecord pairs a file descriptor with its content.
type fileRecord struct {
	meta    model.File
	content []byte
}

// Server is an in-memory Slivka stub on top of httptest.Server. All fixture
// and counter methods are safe for concurrent use with request handling.
type Server struct {
	*httptest.Server

	ServerVersion string
	APIVersion    string

	mu            sync.Mutex
	services      []*model.Service
	jobs          map[string]*jobRecord
	files         map[string]*fileRecord
	servicesGets  int
	jobGets       map[string]int
	jobFilesGets  map[string]int
	versionGets   int
	contentGets   map[string]int
}

// NewServer starts a stub with no fixtures. The caller must Close it.
func NewServer() *Server {
	s := &Server{
		ServerVersion: "2.2.2",
		APIVersion:    "1.1",
		jobs:          make(map[string]*jobRecord),
		files:         make(map[string]*fileRecord),
		jobGets:       make(map[string]int),
		jobFilesGets:  make(map[string]int),
		contentGets:   make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/api/version", s.handleVersion)
	r.Get("/api/services", s.handleServices)
	r.Get("/api/services/{id}", s.handleService)
	r.Post("/api/services/{id}/jobs", s.handleSubmit)
	r.Get("/api/jobs/{id}", s.handleJob)
	r.Get("/api/jobs/{id}/files", s.handleJobFiles)
	r.Post("/api/files", s.handleUpload)
	r.Get("/api/files/{id}", s.handleFile)
	r.Get("/media/{id}", s.handleContent)

	s.Server = httptest.NewServer(r)
	return s
}

// BaseURL returns the stub's base URL with a trailing slash, ready for
// config.Config.
func (s *Server) BaseURL() string {
	return s.URL + "/"
}

// AddService registers a service fixture. The "@url" reference is filled in
// from the id when empty.
func (s *Server) AddService(svc *model.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.URL == "" {
		svc.URL = "/api/services/" + svc.ID
	}
	s.services = append(s.services, svc)
}

// SetJobStatus moves a job to the given state; terminal states also set the
// completion time.
func (s *Server) SetJobStatus(jobID string, state model.JobState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return
	}
	rec.meta.Status = string(state)
	if state.Finished() {
		rec.meta.CompletionTime = model.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
	}
}

// AttachResult registers a result file for a job and returns its id.
func (s *Server) AttachResult(jobID, path, label, mediaType string, content []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.files[id] = &fileRecord{
		meta: model.File{
			URL:        "/api/files/" + id,
			ContentURL: "/media/" + id,
			ID:         id,
			JobID:      jobID,
			Path:       path,
			Label:      label,
			MediaType:  mediaType,
		},
		content: content,
	}
	return id
}

// SetFileContent replaces the stored bytes of a file, keeping its metadata.
func (s *Server) SetFileContent(fileID string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.files[fileID]; ok {
		rec.content = content
	}
}

// Job returns a copy of the stored job metadata.
func (s *Server) Job(jobID string) (model.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok {
		return model.Job{}, false
	}
	return rec.meta, true
}

// SubmittedFields returns the multipart form fields recorded for a job.
func (s *Server) SubmittedFields(jobID string) map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[jobID]; ok {
		return rec.fields
	}
	return nil
}

// SubmittedFiles returns the multipart file contents recorded for a job.
func (s *Server) SubmittedFiles(jobID string) map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[jobID]; ok {
		return rec.files
	}
	return nil
}

// ServicesFetchCount reports how many times GET api/services was served.
func (s *Server) ServicesFetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.servicesGets
}

// JobFetchCount reports how many times the job's metadata was served.
func (s *Server) JobFetchCount(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobGets[jobID]
}

// JobFilesFetchCount reports how many times the job's file list was served.
func (s *Server) JobFilesFetchCount(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobFilesGets[jobID]
}

// ContentFetchCount reports how many times a file's content was served.
func (s *Server) ContentFetchCount(fileID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentGets[fileID]
}

// readPart fully reads one multipart file part.
func readPart(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.versionGets++
	resp := model.VersionResponse{SlivkaVersion: s.ServerVersion, APIVersion: s.APIVersion}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.servicesGets++
	resp := model.ServiceList{Services: s.services}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, svc := range s.services {
		if svc.ID == id {
			writeJSON(w, http.StatusOK, svc)
			return
		}
	}
	writeError(w, http.StatusNotFound, "service not found")
}

// handleSubmit validates required parameters the way a real server would and
// either returns the full error list with a 422 or records the job.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	var svc *model.Service
	for _, candidate := range s.services {
		if candidate.ID == id {
			svc = candidate
			break
		}
	}
	s.mu.Unlock()
	if svc == nil {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	fields := r.MultipartForm.Value
	files := make(map[string][]byte)
	for name, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		content, err := readPart(headers[0])
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file part")
			return
		}
		files[name] = content
	}

	var errs []model.ErrorDetail
	for _, p := range svc.Parameters {
		if !p.Required {
			continue
		}
		if len(fields[p.ID]) > 0 {
			continue
		}
		if _, uploaded := files[p.ID]; uploaded {
			continue
		}
		errs = append(errs, model.ErrorDetail{
			Parameter: p.ID,
			Message:   "Field is required",
			ErrorCode: "required",
		})
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, model.SubmissionErrorBody{Errors: errs})
		return
	}

	jobID := uuid.NewString()
	params := make(map[string]any, len(fields))
	for name, values := range fields {
		if len(values) == 1 {
			params[name] = values[0]
		} else {
			params[name] = values
		}
	}

	meta := model.Job{
		URL:            "/api/jobs/" + jobID,
		ID:             jobID,
		Service:        svc.ID,
		Parameters:     params,
		SubmissionTime: model.Timestamp{Time: time.Now().UTC().Truncate(time.Second)},
		Status:         string(model.StatePending),
	}

	s.mu.Lock()
	s.jobs[jobID] = &jobRecord{meta: meta, fields: fields, files: files}
	s.mu.Unlock()

	writeJSON(w, http.StatusAccepted, meta)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", id))
		return
	}
	s.jobGets[id]++
	writeJSON(w, http.StatusOK, rec.meta)
}

func (s *Server) handleJobFiles(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("job %s not found", id))
		return
	}
	s.jobFilesGets[id]++
	list := model.FileList{Files: []*model.File{}}
	for _, rec := range s.files {
		if rec.meta.JobID == id {
			meta := rec.meta
			list.Files = append(list.Files, &meta)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "missing file part")
		return
	}
	content, err := readPart(headers[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable file part")
		return
	}

	id := uuid.NewString()
	meta := model.File{
		URL:        "/api/files/" + id,
		ContentURL: "/media/" + id,
		ID:         id,
		Label:      headers[0].Filename,
	}

	s.mu.Lock()
	s.files[id] = &fileRecord{meta: meta, content: content}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, meta)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[id]
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	writeJSON(w, http.StatusOK, rec.meta)
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rec, ok := s.files[id]
	if ok {
		s.contentGets[id]++
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if rec.meta.MediaType != "" {
		w.Header().Set("Content-Type", rec.meta.MediaType)
	}
	_, _ = w.Write(rec.content)
}
