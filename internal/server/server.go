// Package server exposes the upload form and the forecast pipeline over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aouyang1/revenue-forecaster/pipeline"
	"github.com/aouyang1/revenue-forecaster/report"
	"github.com/aouyang1/revenue-forecaster/schema"
	"github.com/aouyang1/revenue-forecaster/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MessageMissingColumns = "The file must contain 'Date' and 'Revenue' columns."
	MessageTooLarge       = "The uploaded file is too large."
	MessageUnsupported    = "Upload a .csv or .xlsx file."
	MessageNoFile         = "Choose a file to upload."
	MessageInternal       = "Something went wrong while forecasting. Please try again."
)

// FileField is the multipart form field carrying the upload
const FileField = "file"

const (
	// multipartOverhead leaves room for the multipart envelope around an upload of the
	// maximum size
	multipartOverhead = 64 << 10
	multipartMemory   = 8 << 20
)

// Options configures the server
type Options struct {
	Runner         *pipeline.Runner
	Warnings       []string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

// Server serves the forecasting page
type Server struct {
	runner         *pipeline.Runner
	warnings       []string
	maxUploadBytes int64
	requestTimeout time.Duration
	gatherer       prometheus.Gatherer
	logger         *slog.Logger
}

// New returns a server running uploads through opt.Runner
func New(opt Options) *Server {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := opt.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		runner:         opt.Runner,
		warnings:       opt.Warnings,
		maxUploadBytes: opt.MaxUploadBytes,
		requestTimeout: opt.RequestTimeout,
		gatherer:       gatherer,
		logger:         logger.With(slog.String("component", "server")),
	}
}

// Routes returns the router of every endpoint
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.requestTimeout > 0 {
		r.Use(middleware.Timeout(s.requestTimeout))
	}

	r.Get("/", s.handle(s.index))
	r.Post("/forecast", s.handle(s.forecast))
	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// handlerFunc is an http handler that leaves unexpected failures to the caller
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle logs errors a handler could not deal with and responds with a 500
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		s.renderPage(w, r, http.StatusInternalServerError, report.View{
			Warnings: s.warnings,
			Error:    MessageInternal,
		})
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) error {
	return report.Render(w, report.View{Warnings: s.warnings})
}

func (s *Server) forecast(w http.ResponseWriter, r *http.Request) error {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status, msg, ok := userError(err)
		if !ok {
			status, msg = http.StatusBadRequest, MessageNoFile
		}
		s.renderPage(w, r, status, report.View{Warnings: s.warnings, Error: msg})
		return nil
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			s.renderPage(w, r, http.StatusBadRequest, report.View{Warnings: s.warnings, Error: MessageNoFile})
			return nil
		}
		return err
	}
	defer file.Close()

	out, err := s.runner.Run(r.Context(), header.Filename, file)
	if err != nil {
		status, msg, ok := userError(err)
		if !ok {
			return err
		}
		s.renderPage(w, r, status, report.View{
			Warnings: s.warnings,
			Filename: header.Filename,
			Error:    msg,
		})
		return nil
	}

	view, err := report.NewView(header.Filename, out.Series, out.Result)
	if err != nil {
		return err
	}
	view.Warnings = s.warnings
	s.renderPage(w, r, http.StatusOK, view)
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, v report.View) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := report.Render(w, v); err != nil {
		s.logger.ErrorContext(r.Context(), "unable to render page", slog.String("error", err.Error()))
	}
}

// userError maps failures caused by the shape of the upload to a status and message shown on
// the page. ok is false for everything else, including cells that fail to parse, which are
// left to the caller.
func userError(err error) (status int, msg string, ok bool) {
	var (
		schemaErr   *schema.SchemaError
		tooLargeErr *table.TooLargeError
		maxBytesErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity, MessageMissingColumns, true
	case errors.As(err, &tooLargeErr), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, MessageTooLarge, true
	case errors.Is(err, table.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, MessageUnsupported, true
	default:
		return 0, "", false
	}
}
