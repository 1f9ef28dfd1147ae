// Package server is the composition root: it opens the database, builds the
// services and handlers, mounts the routes, and runs the HTTP server until a
// shutdown signal arrives.
//
// DEPENDENCY FLOW:
//
//	config.Config → sqlite.DB → AccountService / ComplaintService → handlers → chi router
//
// Keeping this out of main.go means tests can build a complete server
// against an in-memory database and drive it through Handler().
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/ncps/internal/attachment"
	"github.com/sakif/ncps/internal/auth"
	"github.com/sakif/ncps/internal/catalog"
	"github.com/sakif/ncps/internal/config"
	"github.com/sakif/ncps/internal/faq"
	"github.com/sakif/ncps/internal/handler"
	"github.com/sakif/ncps/internal/localization"
	"github.com/sakif/ncps/internal/metrics"
	"github.com/sakif/ncps/internal/middleware"
	sqliteRepo "github.com/sakif/ncps/internal/repository/sqlite"
	"github.com/sakif/ncps/internal/service"
	"github.com/sakif/ncps/internal/view"
)

// UploadsPrefix is the URL path stored attachments are served under.
const UploadsPrefix = "/uploads"

const shutdownTimeout = 30 * time.Second

// Server owns the router and the database connection. The connection is
// closed when Start returns, or by Close for servers that are never started.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires every dependency. cat is the service catalog to offer; main
// passes either the built-in one or one loaded from CATALOG_FILE.
func New(cfg config.Config, cat *catalog.Catalog, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(cat); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes mounts:
//
//	GET       /                        home
//	GET/POST  /register, /login        account forms
//	GET       /logout
//	GET       /service/{id}            categories of one service
//	GET/POST  /ai-help                 FAQ answers
//	GET       /uploads/*               stored attachments
//	GET       /healthz, /metrics
//	GET       /profile                 signed-in users
//	GET       /complaint/new           signed-in users
//	POST      /complaint               signed-in users
//	GET       /admin                   administrator
//	POST      /admin/complaint/update  administrator
//	GET       /admin/export.xlsx       administrator
//
// Middleware order: RequestID first so the logger sees the id, Recoverer
// inside the logger so a panic is logged as a 500, and LoadSession last so
// every handler can read the principal.
func (s *Server) setupRoutes(cat *catalog.Catalog) error {
	passwords, err := auth.NewPasswordService(s.config.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewSessionTokens(s.config.SessionSecret, s.config.SessionTTL)
	if err != nil {
		return err
	}
	sink, err := attachment.NewDiskSink(s.config.UploadDir, UploadsPrefix)
	if err != nil {
		return err
	}
	messages, err := localization.Default()
	if err != nil {
		return err
	}
	templates, err := view.New()
	if err != nil {
		return err
	}
	gate := auth.NewGate(s.config.AdminEmail)

	accounts := service.NewAccountService(s.db, passwords, s.logger)
	complaints := service.NewComplaintService(s.db, cat, sink, s.logger)

	pages := handler.NewPages(templates, messages, gate, s.config.DefaultLang, s.logger)
	catalogHandler := handler.NewCatalogHandler(pages, cat)
	helpHandler := handler.NewHelpHandler(pages, faq.Default())
	accountHandler := handler.NewAccountHandler(pages, accounts, tokens)
	complaintHandler := handler.NewComplaintHandler(pages, cat, complaints, s.config.MaxUploadBytes)
	adminHandler := handler.NewAdminHandler(pages, complaints)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(metrics.InstrumentHandler)
	s.router.Use(auth.LoadSession(tokens, accounts))

	uploads := http.FileServer(filesOnly{http.Dir(sink.Dir())})
	s.router.Handle(UploadsPrefix+"/*", http.StripPrefix(UploadsPrefix+"/", uploads))

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Get("/", catalogHandler.HandleHome)
	s.router.Get("/service/{id}", catalogHandler.HandleService)
	s.router.Get("/ai-help", helpHandler.HandleForm)
	s.router.Post("/ai-help", helpHandler.HandleAsk)

	s.router.Get("/register", accountHandler.HandleRegisterForm)
	s.router.Post("/register", accountHandler.HandleRegister)
	s.router.Get("/login", accountHandler.HandleLoginForm)
	s.router.Post("/login", accountHandler.HandleLogin)
	s.router.Get("/logout", accountHandler.HandleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuthenticated(gate))
		r.Get("/profile", complaintHandler.HandleProfile)
		r.Get("/complaint/new", complaintHandler.HandleNew)
		r.Post("/complaint", complaintHandler.HandleSubmit)
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireAdministrator(gate))
		r.Get("/", adminHandler.HandleList)
		r.Post("/complaint/update", adminHandler.HandleUpdate)
		r.Get("/export.xlsx", adminHandler.HandleExport)
	})

	return nil
}

// filesOnly hides directories, so the upload root never produces an index
// of stored attachments. Only a request for an exact stored name succeeds.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}

// Start serves until SIGINT or SIGTERM, then stops accepting connections,
// gives in-flight requests up to 30 seconds, and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	// WriteTimeout is generous because uploads and exports can be large.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
