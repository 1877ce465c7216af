package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/linguasigna/signaling-server/internal/config"
	"github.com/linguasigna/signaling-server/internal/registry"
	"github.com/linguasigna/signaling-server/internal/server"
	"github.com/linguasigna/signaling-server/internal/stats"
)

type SignalingApp struct {
	log            *log.Logger
	relay          *server.RelayServer
	users          registry.UserRegistry
	rooms          registry.RoomRegistry
	sessions       registry.SessionRegistry
	stats          stats.StatsProvider
	mux            *http.Server
	signingKey     []byte
	allowedOrigins []string
}

func NewSignalingApp(mux *http.ServeMux, logger *log.Logger, relay *server.RelayServer,
	users registry.UserRegistry, rooms registry.RoomRegistry, sessions registry.SessionRegistry,
	su stats.StatsProvider, cfg *config.Config) *SignalingApp {
	s := &SignalingApp{
		log:            logger,
		relay:          relay,
		users:          users,
		rooms:          rooms,
		sessions:       sessions,
		stats:          su,
		signingKey:     cfg.SigningKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/session", s.authMiddleware(s.session))
	mux.HandleFunc("GET /api/auth/logout", s.authMiddleware(s.logout))
	mux.HandleFunc("POST /api/rooms", s.createRoom)
	mux.HandleFunc("POST /api/rooms/join", s.joinRoom)
	mux.HandleFunc("GET /api/rooms", s.listRooms)
	mux.HandleFunc("POST /api/translation/start", s.startTranslation)
	mux.HandleFunc("GET /api/translation/sessions", s.listTranslationSessions)
	mux.HandleFunc("GET /api/stats", s.serverStats)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *SignalingApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *SignalingApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
