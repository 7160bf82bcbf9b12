// Package api implements the sketchpipe HTTP conversion service.
//
// The service exposes one conversion endpoint plus a health check:
//
//	POST /v1/convert?format=dot&layout=structural
//	GET  /healthz
//
// The convert body is either a diagram JSON document or a raw scene
// wrapped as {"scene": ...}; the response body is the rendered artifact.
// Caller mistakes (bad format, bad layout, invalid documents) map to
// 4xx responses, never 500.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wyeh/sketchpipe/pkg/errors"
	"github.com/wyeh/sketchpipe/pkg/model"
	"github.com/wyeh/sketchpipe/pkg/pipeline"
	"github.com/wyeh/sketchpipe/pkg/render"
)

// maxBodyBytes caps request bodies at 10 MiB.
const maxBodyBytes = 10 << 20

// contentTypes maps formats to response content types.
var contentTypes = map[render.Format]string{
	render.FormatMermaid: "text/plain; charset=utf-8",
	render.FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	render.FormatDrawio:  "application/xml; charset=utf-8",
	render.FormatSVG:     "image/svg+xml",
}

// Server handles conversion requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a conversion server backed by the given runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/convert", s.handleConvert)

	return r
}

// convertRequest is the accepted body shape. Scene is set when the
// caller submits a raw scene; otherwise the whole body is a diagram.
type convertRequest struct {
	Scene json.RawMessage `json:"scene"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	format := render.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = render.FormatMermaid
	}
	opts := pipeline.Options{
		Formats: []render.Format{format},
		Layout:  render.LayoutMode(r.URL.Query().Get("layout")),
		Logger:  s.logger,
	}

	var req convertRequest
	// A decode failure here just means the body is not a wrapper object;
	// the diagram path below reports malformed JSON properly.
	_ = json.Unmarshal(body, &req)

	var result *pipeline.Result
	if len(req.Scene) > 0 {
		result, err = s.runner.ExtractAndConvert(r.Context(), req.Scene, opts)
	} else {
		var d model.Diagram
		d, err = model.UnmarshalDiagram(body)
		if err == nil {
			result, err = s.runner.Convert(r.Context(), d, opts)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Diagram-Hash", result.DiagramHash)
	w.Header().Set("X-Extract-Nodes", fmt.Sprint(result.Summary.NodeCount))
	w.Header().Set("X-Extract-Edges", fmt.Sprint(result.Summary.EdgeCount))
	w.Header().Set("X-Extract-Warnings", fmt.Sprint(result.Summary.Warnings()))
	_, _ = w.Write(result.Artifacts[format])
}

// writeError maps pipeline errors onto HTTP statuses. Caller mistakes
// are 4xx; only genuinely unexpected failures surface as 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeUnknownFormat, errors.ErrCodeInvalidLayout, errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeSchema, errors.ErrCodeInvalidScene:
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    string(errors.GetCode(err)),
			"message": errors.UserMessage(err),
		},
	})
}

// requestID tags every request and response with a uuid.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get("X-Request-ID"),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}
