// Package httpapi exposes the file, export and dashboard operations over a
// REST API routed with gorilla/mux.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taxvault/internal/blobstore"
	"github.com/dmitrijs2005/taxvault/internal/logging"
	"github.com/dmitrijs2005/taxvault/internal/report"
	"github.com/dmitrijs2005/taxvault/internal/server/models"
	"github.com/dmitrijs2005/taxvault/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type FileAPI interface {
	MaxFileSize() int64
	Upload(ctx context.Context, userID, originalName, mimeType string, data []byte) (*blobstore.SaveResult, error)
	Fetch(ctx context.Context, userID, ownerID, storedName string) (*blobstore.ResolvedFile, error)
	List(ctx context.Context, userID string) ([]blobstore.StoredFile, error)
}

type LedgerAPI interface {
	Summary(ctx context.Context, userID string, year int) (report.Summary, error)
	Monthly(ctx context.Context, userID string, year int) ([]report.MonthTotals, error)
	Recent(ctx context.Context, userID string, limit int) ([]models.LedgerEntry, error)
	AttachFile(ctx context.Context, userID string, kind models.EntryType, id string, att models.Attachment) error
}

type ExportAPI interface {
	ExportTaxYear(ctx context.Context, userID string, year int) (*services.TaxExport, error)
}

// Options configures a Server.
type Options struct {
	Address         string
	SecretKey       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	// Registry receives the API metrics and backs /metrics. A fresh registry
	// is used when nil.
	Registry *prometheus.Registry
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	jwtSecret       []byte
	files           FileAPI
	ledger          LedgerAPI
	exports         ExportAPI
	logger          logging.Logger
	metrics         *Metrics
	handler         http.Handler
}

func NewServer(o Options, l logging.Logger, fs FileAPI, ls LedgerAPI, es ExportAPI) *Server {
	reg := o.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		address:         o.Address,
		shutdownTimeout: o.ShutdownTimeout,
		jwtSecret:       []byte(o.SecretKey),
		files:           fs,
		ledger:          ls,
		exports:         es,
		logger:          l.With("module", "http_server"),
		metrics:         NewMetrics(reg),
	}

	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware, s.loggingMiddleware, s.recoveryMiddleware)

	router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/upload", s.uploadFile).Methods(http.MethodPost)
	api.HandleFunc("/files", s.listFiles).Methods(http.MethodGet)
	api.HandleFunc("/files/{userId}/{fileName}", s.serveFile).Methods(http.MethodGet)
	api.HandleFunc("/files/{userId}/{fileName}/download", s.downloadFile).Methods(http.MethodGet)
	api.HandleFunc("/export/tax-report/{year}", s.exportTaxYear).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/summary/{year}", s.dashboardSummary).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/monthly/{year}", s.dashboardMonthly).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/recent", s.dashboardRecent).Methods(http.MethodGet)
	api.HandleFunc("/{kind:income|expense}/{id}/attachment", s.attachFile).Methods(http.MethodPut)

	c := cors.New(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", RequestIDHeader},
		AllowCredentials: true,
	})
	s.handler = c.Handler(router)

	return s
}

// Handler returns the full handler chain (CORS, router, middleware).
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError logs err with the request context and writes the mapped
// response.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, args ...any) {
	status, msg := statusFor(err)
	args = append(args, "request_id", RequestIDFromContext(r.Context()), "error", err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", args...)
	} else {
		s.logger.Debug(r.Context(), "request rejected", args...)
	}
	s.errorResponse(w, status, msg)
}
