package di

import (
	"github.com/eunyuson/GRACE-sub002/application/commands/bus"
	"github.com/eunyuson/GRACE-sub002/application/ports"
	querybus "github.com/eunyuson/GRACE-sub002/application/queries/bus"
	"github.com/eunyuson/GRACE-sub002/application/services"
	"github.com/eunyuson/GRACE-sub002/infrastructure/config"
	"github.com/eunyuson/GRACE-sub002/pkg/auth"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	CardRepo    ports.CardRepository
	Sources     ports.SourceReader
	Generator   ports.TextGenerator
	Cache       ports.Cache
	Outbox      *services.CardOutbox
	Suggestions *services.SuggestionService
	CommandBus  *bus.CommandBus
	QueryBus    *querybus.QueryBus
	Limiters    *auth.RateLimiters
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideCardRepository,
	ProvideSourceReader,
	ProvideTextGenerator,
	ProvideInMemoryCache,
	ProvideCardOutbox,
	ProvideSuggestionService,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideRateLimiters,
	wire.Struct(new(Container), "*"),
)
