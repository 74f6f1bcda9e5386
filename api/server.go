package api

import (
	"context"
	"fmt"
	"net/http"

	"code.perpnote.io/perpnote/bond"
	"code.perpnote.io/perpnote/libs/num"
	"code.perpnote.io/perpnote/logging"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/cors"
)

// NoteService is the read-only note engine surface exposed over REST.
type NoteService interface {
	ReserveTokens() []*bond.Tranche
	ReserveBalance(tokenID string) *num.Uint
	QueueIDs() []string
	DepositBond(ctx context.Context) (*bond.Bond, error)
	TVL() (num.Decimal, bool)
	NotePrice() (num.Decimal, bool)
}

// VaultService is the read-only vault surface exposed over REST.
type VaultService interface {
	GetTVL() (num.Decimal, bool)
	Held() []*bond.Tranche
	Account() string
}

// FeeService exposes the current deviation ratio.
type FeeService interface {
	DeviationRatio() (num.Decimal, error)
}

// Server is the read-only REST server over the running engines.
type Server struct {
	Config
	log *logging.Logger

	note  NoteService
	vault VaultService
	fees  FeeService

	srv *http.Server
}

// NewServer creates the REST server, nothing is bound until Start.
func NewServer(log *logging.Logger, cfg Config, note NoteService, vault VaultService, fees FeeService) *Server {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Server{
		Config: cfg,
		log:    log,
		note:   note,
		vault:  vault,
		fees:   fees,
	}
}

// ReloadConf updates the internal configuration of the server.
func (s *Server) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}

	s.Config = cfg
}

// Start binds the listener and serves until Stop, blocking.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.IP, s.Port)
	s.log.Info("starting REST based HTTP server",
		logging.String("address", addr),
	)

	handler := cors.Default().Handler(s.router())
	s.srv = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "failed to serve REST api")
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.srv == nil {
		return nil
	}
	s.log.Info("stopping REST based HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout.Get())
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/reserve", s.handleReserve).Methods(http.MethodGet)
	r.HandleFunc("/queue", s.handleQueue).Methods(http.MethodGet)
	r.HandleFunc("/deposit-bond", s.handleDepositBond).Methods(http.MethodGet)
	r.HandleFunc("/tvl", s.handleTVL).Methods(http.MethodGet)
	r.HandleFunc("/deviation-ratio", s.handleDeviationRatio).Methods(http.MethodGet)
	r.HandleFunc("/vault/positions", s.handleVaultPositions).Methods(http.MethodGet)
	return r
}
