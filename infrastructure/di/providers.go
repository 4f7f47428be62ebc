package di

import (
	"context"
	"fmt"

	"github.com/eunyuson/GRACE-sub002/application/commands"
	"github.com/eunyuson/GRACE-sub002/application/commands/bus"
	commandhandlers "github.com/eunyuson/GRACE-sub002/application/commands/handlers"
	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/application/queries"
	querybus "github.com/eunyuson/GRACE-sub002/application/queries/bus"
	"github.com/eunyuson/GRACE-sub002/application/services"
	"github.com/eunyuson/GRACE-sub002/infrastructure/ai"
	"github.com/eunyuson/GRACE-sub002/infrastructure/config"
	"github.com/eunyuson/GRACE-sub002/infrastructure/persistence/dynamodb"
	"github.com/eunyuson/GRACE-sub002/pkg/auth"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCardRepository creates a card repository
func ProvideCardRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.CardRepository {
	return dynamodb.NewCardRepository(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		logger,
	)
}

// ProvideSourceReader creates a source reader
func ProvideSourceReader(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SourceReader {
	return dynamodb.NewSourceRepository(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		logger,
	)
}

// ProvideTextGenerator creates the generation collaborator. When AI is
// switched off the generator is nil and the pipeline reports itself
// unavailable.
func ProvideTextGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.TextGenerator, error) {
	if !cfg.AIEnabled {
		logger.Info("Text generation disabled by configuration")
		return nil, nil
	}
	return ai.NewGeminiGenerator(ctx, cfg.GenAIAPIKey, cfg.GenAIModel, logger)
}

// ProvideInMemoryCache creates the in-memory cache
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideRateLimiters creates the API rate limiters so the container
// can stop their cleanup goroutines on shutdown
func ProvideRateLimiters() *auth.RateLimiters {
	return auth.NewRateLimiters(100, 200)
}

// ProvideCardOutbox creates the card write outbox
func ProvideCardOutbox(repo ports.CardRepository, logger *zap.Logger) *services.CardOutbox {
	return services.NewCardOutbox(repo, logger)
}

// ProvideSuggestionService creates the suggestion service
func ProvideSuggestionService(
	cards ports.CardRepository,
	sources ports.SourceReader,
	generator ports.TextGenerator,
	cache ports.Cache,
	outbox *services.CardOutbox,
	logger *zap.Logger,
) *services.SuggestionService {
	return services.NewSuggestionService(cards, sources, generator, cache, outbox, logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	cards ports.CardRepository,
	outbox *services.CardOutbox,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	loader := commandhandlers.NewCardLoader(cards)

	createHandler := commandhandlers.NewCreateCardHandler(outbox, logger)
	if err := commandBus.Register(&commands.CreateCardCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(*commands.CreateCardCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return createHandler.Handle(ctx, createCmd)
		},
	}); err != nil {
		return nil, err
	}

	updateHandler := commandhandlers.NewUpdateCardHandler(loader, outbox, logger)
	if err := commandBus.Register(&commands.UpdateCardCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(*commands.UpdateCardCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return updateHandler.Handle(ctx, updateCmd)
		},
	}); err != nil {
		return nil, err
	}

	addLinkHandler := commandhandlers.NewAddLinkHandler(loader, outbox, logger)
	if err := commandBus.Register(&commands.AddLinkCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			addCmd, ok := cmd.(*commands.AddLinkCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return addLinkHandler.Handle(ctx, addCmd)
		},
	}); err != nil {
		return nil, err
	}

	removeLinkHandler := commandhandlers.NewRemoveLinkHandler(loader, outbox, logger)
	if err := commandBus.Register(&commands.RemoveLinkCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			removeCmd, ok := cmd.(*commands.RemoveLinkCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return removeLinkHandler.Handle(ctx, removeCmd)
		},
	}); err != nil {
		return nil, err
	}

	togglePinHandler := commandhandlers.NewTogglePinHandler(loader, outbox, logger)
	if err := commandBus.Register(&commands.TogglePinCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			toggleCmd, ok := cmd.(*commands.TogglePinCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return togglePinHandler.Handle(ctx, toggleCmd)
		},
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	cards ports.CardRepository,
	sources ports.SourceReader,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	getHandler := queries.NewGetCardHandler(cards)
	if err := queryBus.Register(&queries.GetCardQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			getQuery, ok := q.(*queries.GetCardQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getHandler.Handle(ctx, getQuery)
		},
	}); err != nil {
		return nil, err
	}

	listHandler := queries.NewListCardsHandler(cards)
	if err := queryBus.Register(&queries.ListCardsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			listQuery, ok := q.(*queries.ListCardsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listHandler.Handle(ctx, listQuery)
		},
	}); err != nil {
		return nil, err
	}

	groupHandler := queries.NewGroupQuestionsHandler(cards)
	if err := queryBus.Register(&queries.GroupQuestionsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			groupQuery, ok := q.(*queries.GroupQuestionsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return groupHandler.Handle(ctx, groupQuery)
		},
	}); err != nil {
		return nil, err
	}

	resolveHandler := queries.NewResolveCardHandler(cards, sources, logger)
	if err := queryBus.Register(&queries.ResolveCardQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, q querybus.Query) (interface{}, error) {
			resolveQuery, ok := q.(*queries.ResolveCardQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return resolveHandler.Handle(ctx, resolveQuery)
		},
	}); err != nil {
		return nil, err
	}

	return queryBus, nil
}
