package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/service"
)

type Dependencies struct {
	Logger        *zap.Logger
	Addr          string
	ScanService   *service.ScanService
	SyncService   *service.SyncService
	ReportService *service.ReportService
	PersonService *service.PersonService
	// Ready reports whether the backing store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	httpServer    *http.Server
	logger        *zap.Logger
	mux           *http.ServeMux
	scanService   *service.ScanService
	syncService   *service.SyncService
	reportService *service.ReportService
	personService *service.PersonService
	ready         func(ctx context.Context) error
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:        logger,
		mux:           mux,
		scanService:   d.ScanService,
		syncService:   d.SyncService,
		reportService: d.ReportService,
		personService: d.PersonService,
		ready:         d.Ready,
	}

	mux.HandleFunc("POST /v1/scans", s.handleScan)
	mux.HandleFunc("GET /v1/scans/updates", s.handleUpdates)
	mux.HandleFunc("GET /v1/scans", s.handleSnapshot)
	mux.HandleFunc("GET /v1/reports/daily", s.handleReport)
	mux.HandleFunc("GET /v1/devices", s.handleDevices)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("POST /v1/persons", s.handleRegister)
	mux.HandleFunc("GET /v1/persons/{tag_id}", s.handleGetPerson)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.HandleFunc("/", s.handleUnsupported)

	handler := requestIDMiddleware(loggingMiddleware(logger, recoverMiddleware(logger, mux)))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
