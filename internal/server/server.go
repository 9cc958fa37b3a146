package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/authgate/apiserver/config"
	"github.com/authgate/apiserver/internal/auth"
	"github.com/authgate/apiserver/internal/db"
	"github.com/authgate/apiserver/internal/handlers"
	"github.com/authgate/apiserver/internal/notify"
	"github.com/authgate/apiserver/internal/services"
	"github.com/authgate/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const purgeInterval = time.Hour

// Server wraps the HTTP server, router, and background sweeper.
type Server struct {
	httpServer    *http.Server
	router        *chi.Mux
	db            *sql.DB
	authService   *services.AuthService
	log           *slog.Logger
	closeNotifier func() error
	stopSweeper   context.CancelFunc
	sweeperDone   chan struct{}
}

// New constructs a Server with the full credential lifecycle wired up.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	notifier, closeNotifier, err := notify.New(ctx, cfg, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	accountRepo := store.NewAccountRepository(dbConn)
	revocationRepo := store.NewRevocationRepository(dbConn)

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	signer := auth.NewSigner(jwtSecret, cfg.Auth.TokenTTL)

	authService := services.NewAuthService(
		accountRepo,
		revocationRepo,
		notifier,
		hasher,
		signer,
		cfg.Auth.ResetTTL,
		log,
	)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, cfg.DevMode)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer:    httpServer,
		router:        router,
		db:            dbConn,
		authService:   authService,
		log:           log,
		closeNotifier: closeNotifier,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start launches the revocation sweeper and runs the HTTP server. The
// sweeper is stopped before Start returns, so a serve error does not leak
// the goroutine.
func (s *Server) Start() error {
	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweeper = cancel
	defer cancel()

	s.sweeperDone = make(chan struct{})
	go func() {
		defer close(s.sweeperDone)
		s.sweepRevoked(sweepCtx)
	}()

	return s.httpServer.ListenAndServe()
}

// Shutdown stops the sweeper and closes the notifier, database and server.
func (s *Server) Shutdown() error {
	if s.stopSweeper != nil {
		s.stopSweeper()
	}
	if s.sweeperDone != nil {
		<-s.sweeperDone
	}
	if s.closeNotifier != nil {
		_ = s.closeNotifier()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

// sweepRevoked periodically purges ledger entries for tokens that have
// expired on their own. Sweep timing only affects table growth; expired
// tokens are already refused by the signature check.
func (s *Server) sweepRevoked(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.authService.PurgeRevoked(ctx); err != nil {
				s.log.ErrorContext(ctx, "revocation sweep failed", "error", err)
			}
		}
	}
}
