package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/peopleforge/peopleforge/pkg/application"
	"github.com/peopleforge/peopleforge/pkg/configuration"
	"github.com/peopleforge/peopleforge/pkg/middleware"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
}

type Server struct {
	router *mux.Router
	logger *logrus.Logger
}

// Default builds the HTTP server: global middleware first, then every
// registered controller.
func Default(opts *DefaultOptions) (*Server, error) {
	router := mux.NewRouter()
	router.Use(
		middleware.WithLogger(opts.Logger),
		middleware.ProvidePool(opts.Pool),
	)
	router.Use(opts.Application.Middleware()...)

	for _, controller := range opts.Application.Controllers() {
		controller.Register(router)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return &Server{router: router, logger: opts.Logger}, nil
}

func (s *Server) Start(address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return srv.ListenAndServe()
}
