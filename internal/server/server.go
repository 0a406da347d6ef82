package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sachin-security/sachin-security-sub000/internal/auth"
	"github.com/sachin-security/sachin-security-sub000/internal/config"
	"github.com/sachin-security/sachin-security-sub000/internal/database"
	"github.com/sachin-security/sachin-security-sub000/internal/storage"
)

// MyServer holds the dependencies shared by every route handler
type MyServer struct {
	Config      *config.Config
	DB          database.Store
	Objects     storage.ObjectStore
	Tokens      auth.TokenService
	Revoker     auth.Revoker
	Credentials *auth.CredentialStore
	Logger      *slog.Logger
}

// New assembles a MyServer from already opened backends.
func New(cfg *config.Config, db database.Store, objects storage.ObjectStore, revoker auth.Revoker, logger *slog.Logger) *MyServer {
	return &MyServer{
		Config:      cfg,
		DB:          db,
		Objects:     objects,
		Tokens:      auth.NewJWTService(cfg.Auth.Secret, cfg.Auth.TokenTTL, revoker),
		Revoker:     revoker,
		Credentials: auth.NewCredentialStore(cfg.Auth.Identities),
		Logger:      logger,
	}
}

// NewServer construct new http.Server serving the registered routes
func (s *MyServer) NewServer() *http.Server {
	// Declare Server config
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Config.Server.Port),
		Handler:           s.RegisterRoutes(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return server
}
