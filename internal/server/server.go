package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shareit-housing/apiserver/config"
	"github.com/shareit-housing/apiserver/internal/db"
	"github.com/shareit-housing/apiserver/internal/handlers"
	"github.com/shareit-housing/apiserver/internal/mailer"
	"github.com/shareit-housing/apiserver/internal/mq"
	"github.com/shareit-housing/apiserver/internal/services"
	"github.com/shareit-housing/apiserver/internal/storage"
	"github.com/shareit-housing/apiserver/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	bus        *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}
	tokenSecret := strings.TrimSpace(os.Getenv("TOKEN_SECRET"))
	if tokenSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("TOKEN_SECRET is required")
	}

	mail, err := mailer.NewMailer(logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	imageStore, err := newImageStore(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	bus, err := newEventBus(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	tokenRepo := store.NewVerificationTokenRepository(dbConn)
	profileRepo := store.NewProfileRepository(dbConn)
	prefsRepo := store.NewPreferencesRepository(dbConn)
	contactRepo := store.NewContactInfoRepository(dbConn)
	listingRepo := store.NewListingRepository(dbConn)

	accountService := services.NewAccountService(
		userRepo, tokenRepo, mail, []byte(tokenSecret), cfg.AppURL, logger,
	)
	wizardService := services.NewWizardService(
		userRepo, profileRepo, prefsRepo, contactRepo, listingRepo,
	)

	var images services.ImageStore
	if imageStore != nil {
		images = imageStore
	}
	var events services.EventPublisher
	if bus != nil {
		events = bus
	}
	listingService := services.NewListingService(
		listingRepo, userRepo, profileRepo, prefsRepo, contactRepo,
		images, events, logger,
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
		handlers.AuthRouter(r, accountService, jwtSecret)
	})
	router.Route("/listings", func(r chi.Router) {
		handlers.ListingRouter(r, listingService, jwtSecret)
	})
	router.Route("/me", func(r chi.Router) {
		handlers.MeRouter(r, wizardService, listingService, jwtSecret)
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
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		bus:        bus,
	}, nil
}

// newImageStore selects the object storage backend from config. An
// empty backend disables image uploads.
func newImageStore(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newEventBus selects the message queue backend from config. An empty
// backend disables event publishing.
func newEventBus(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.bus != nil {
		_ = s.bus.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
