package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/internal/clients"
	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/db"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

// EventEmitter publishes serialized activity events to the downstream queue.
type EventEmitter interface {
	PublishActivityEvent(ctx context.Context, messageBody string) error
}

// Service layer contains the business logic and is used to interact with
// the database and other external clients (if any).
type Services struct {
	DbClient db.DBClient
	Clients  *clients.Clients
	cfg      *config.Config
	params   *types.ProtocolParams
	emitter  EventEmitter
	now      func() time.Time

	// opMu serializes state-mutating operations. Pool totals, vote tallies and
	// guarantee statuses assume a single writer; mongo transactions alone do
	// not give us that across the read-mutate-write cycle.
	opMu sync.Mutex
}

func New(
	ctx context.Context, cfg *config.Config, params *types.ProtocolParams, clients *clients.Clients,
) (*Services, error) {
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while creating db client")
		return nil, err
	}
	return &Services{
		DbClient: dbClient,
		Clients:  clients,
		cfg:      cfg,
		params:   params,
		now:      time.Now,
	}, nil
}

// SetEventEmitter attaches the queue publisher. The queue is wired after the
// services at startup, hence the late binding.
func (s *Services) SetEventEmitter(emitter EventEmitter) {
	s.emitter = emitter
}

// DoHealthCheck checks the health of the services by ping the database.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	return s.DbClient.Ping(ctx)
}
