package dynamodb

import (
	"context"
	"fmt"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	"github.com/eunyuson/GRACE-sub002/domain/core/entities"
	"github.com/eunyuson/GRACE-sub002/domain/core/valueobjects"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
	"github.com/eunyuson/GRACE-sub002/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// CardRepository implements ports.CardRepository using DynamoDB.
// One item per card; the links, responses, and stage state are stored
// inline since a card is always read and written whole.
type CardRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string // GSI1 - card lookups by ID
	logger    *zap.Logger
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.CardRepository {
	return &CardRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// linkItem is the stored shape of one normalized link record
type linkItem struct {
	Kind       string  `dynamodbav:"Kind"`
	SourceType string  `dynamodbav:"SourceType"`
	SourceID   string  `dynamodbav:"SourceID"`
	SourcePath string  `dynamodbav:"SourcePath,omitempty"`
	Slot       string  `dynamodbav:"Slot,omitempty"`
	Pinned     bool    `dynamodbav:"Pinned"`
	Confidence float64 `dynamodbav:"Confidence"`
	AddedAt    string  `dynamodbav:"AddedAt"`
}

// responseItem is the stored shape of one committed response snippet
type responseItem struct {
	ID        string `dynamodbav:"ID"`
	Text      string `dynamodbav:"Text"`
	Pinned    bool   `dynamodbav:"Pinned"`
	Source    string `dynamodbav:"Source"`
	Status    string `dynamodbav:"Status"`
	CreatedAt string `dynamodbav:"CreatedAt"`
}

// conclusionItem is the stored shape of one conclusion candidate
type conclusionItem struct {
	ID     string `dynamodbav:"ID"`
	Text   string `dynamodbav:"Text"`
	Status string `dynamodbav:"Status"`
}

// scriptureItem is the stored shape of one scripture candidate
type scriptureItem struct {
	ReflectionID string  `dynamodbav:"ReflectionID"`
	Reason       string  `dynamodbav:"Reason"`
	Similarity   float64 `dynamodbav:"Similarity"`
	Status       string  `dynamodbav:"Status"`
}

// cardItem represents the DynamoDB item structure for a concept card
type cardItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"` // CARDID#<id> for direct lookups
	GSI1SK     string `dynamodbav:"GSI1SK"` // Always "METADATA"
	EntityType string `dynamodbav:"EntityType"`

	CardID      string `dynamodbav:"CardID"`
	UserID      string `dynamodbav:"UserID"`
	UserName    string `dynamodbav:"UserName,omitempty"`
	ConceptName string `dynamodbav:"ConceptName"`
	Question    string `dynamodbav:"Question"`
	AStatement  string `dynamodbav:"AStatement,omitempty"`
	Conclusion  string `dynamodbav:"Conclusion,omitempty"`

	Links     []linkItem     `dynamodbav:"Links"`
	Responses []responseItem `dynamodbav:"Responses"`

	ReactionPhase       string         `dynamodbav:"ReactionPhase"`
	ReactionReason      string         `dynamodbav:"ReactionReason,omitempty"`
	ReactionSuggestions []responseItem `dynamodbav:"ReactionSuggestions,omitempty"`

	ConclusionPhase      string           `dynamodbav:"ConclusionPhase"`
	ConclusionReason     string           `dynamodbav:"ConclusionReason,omitempty"`
	ConclusionCandidates []conclusionItem `dynamodbav:"ConclusionCandidates,omitempty"`

	ScripturePhase      string          `dynamodbav:"ScripturePhase"`
	ScriptureReason     string          `dynamodbav:"ScriptureReason,omitempty"`
	ScriptureCandidates []scriptureItem `dynamodbav:"ScriptureCandidates,omitempty"`

	CreatedAt string `dynamodbav:"CreatedAt"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// Save persists a card to DynamoDB
func (r *CardRepository) Save(ctx context.Context, card *entities.ConceptCard) error {
	if card.ID().IsDraft() {
		return pkgerrors.NewValidationError("cannot persist a draft card")
	}

	item := r.toItem(card)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save card to DynamoDB",
			zap.Error(err),
			zap.String("cardID", card.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save card", err)
	}

	r.logger.Debug("Saved card to DynamoDB",
		zap.String("cardID", card.ID().String()),
		zap.String("userID", card.UserID()),
		zap.Int("links", len(card.Links())),
	)
	return nil
}

// GetByID retrieves a card by its ID via the GSI
func (r *CardRepository) GetByID(ctx context.Context, id string) (*entities.ConceptCard, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("CARDID#%s", id))).
		And(expression.Key("GSI1SK").Equal(expression.Value("METADATA")))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query card", err)
	}
	if len(result.Items) == 0 {
		return nil, pkgerrors.NewNotFoundError("card not found: " + id)
	}

	var item cardItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}

	return r.toEntity(item)
}

// GetByUserID retrieves all cards owned by a user
func (r *CardRepository) GetByUserID(ctx context.Context, userID string) ([]*entities.ConceptCard, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID))).
		And(expression.Key("SK").BeginsWith("CARD#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var cards []*entities.ConceptCard
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query cards", err)
		}

		for _, raw := range result.Items {
			var item cardItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Skipping unreadable card item", zap.Error(err))
				continue
			}
			card, err := r.toEntity(item)
			if err != nil {
				r.logger.Warn("Skipping invalid card item",
					zap.String("cardID", item.CardID),
					zap.Error(err),
				)
				continue
			}
			cards = append(cards, card)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return cards, nil
}

func (r *CardRepository) toItem(card *entities.ConceptCard) cardItem {
	reaction := card.ReactionStage()
	conclusion := card.ConclusionStage()
	scripture := card.ScriptureStage()

	item := cardItem{
		PK:         fmt.Sprintf("USER#%s", card.UserID()),
		SK:         fmt.Sprintf("CARD#%s", card.ID().String()),
		GSI1PK:     fmt.Sprintf("CARDID#%s", card.ID().String()),
		GSI1SK:     "METADATA",
		EntityType: "CONCEPT_CARD",

		CardID:      card.ID().String(),
		UserID:      card.UserID(),
		UserName:    card.UserName(),
		ConceptName: card.ConceptName(),
		Question:    card.Question().String(),
		AStatement:  card.AStatement(),
		Conclusion:  card.Conclusion(),

		Links:     make([]linkItem, 0, len(card.Links())),
		Responses: toResponseItems(card.Responses()),

		ReactionPhase:       string(reaction.Phase),
		ReactionReason:      reaction.Reason,
		ReactionSuggestions: toResponseItems(reaction.Suggestions),

		ConclusionPhase:  string(conclusion.Phase),
		ConclusionReason: conclusion.Reason,

		ScripturePhase:  string(scripture.Phase),
		ScriptureReason: scripture.Reason,

		CreatedAt: utils.FormatTimestamp(card.CreatedAt()),
		UpdatedAt: utils.FormatTimestamp(card.UpdatedAt()),
	}

	for _, l := range card.Links() {
		item.Links = append(item.Links, linkItem{
			Kind:       string(l.Kind),
			SourceType: string(l.Ref.Type()),
			SourceID:   l.Ref.ID(),
			SourcePath: l.Ref.Path(),
			Slot:       string(l.Slot),
			Pinned:     l.Pinned,
			Confidence: l.Confidence,
			AddedAt:    utils.FormatTimestamp(l.AddedAt),
		})
	}
	for _, c := range conclusion.Candidates {
		item.ConclusionCandidates = append(item.ConclusionCandidates, conclusionItem{
			ID:     c.ID,
			Text:   c.Text,
			Status: string(c.Status),
		})
	}
	for _, c := range scripture.Candidates {
		item.ScriptureCandidates = append(item.ScriptureCandidates, scriptureItem{
			ReflectionID: c.ReflectionID,
			Reason:       c.Reason,
			Similarity:   c.Similarity,
			Status:       string(c.Status),
		})
	}

	return item
}

func (r *CardRepository) toEntity(item cardItem) (*entities.ConceptCard, error) {
	id, err := valueobjects.PersistedCardID(item.CardID)
	if err != nil {
		return nil, err
	}
	question, err := valueobjects.NewQuestion(item.Question)
	if err != nil {
		return nil, err
	}

	links := make([]entities.Link, 0, len(item.Links))
	for _, l := range item.Links {
		ref, err := valueobjects.NewSourceRef(valueobjects.SourceType(l.SourceType), l.SourceID, l.SourcePath)
		if err != nil {
			r.logger.Warn("Skipping invalid link record",
				zap.String("cardID", item.CardID),
				zap.String("sourceID", l.SourceID),
			)
			continue
		}
		links = append(links, entities.Link{
			Ref:        ref,
			Kind:       entities.LinkKind(l.Kind),
			Slot:       entities.EvidenceSlot(l.Slot),
			Pinned:     l.Pinned,
			Confidence: l.Confidence,
			AddedAt:    utils.ParseTimestampOrZero(l.AddedAt),
		})
	}

	reactionStage := entities.ReactionStage{
		Phase:       entities.StagePhase(item.ReactionPhase),
		Reason:      item.ReactionReason,
		Suggestions: fromResponseItems(item.ReactionSuggestions),
	}
	conclusionStage := entities.ConclusionStage{
		Phase:  entities.StagePhase(item.ConclusionPhase),
		Reason: item.ConclusionReason,
	}
	for _, c := range item.ConclusionCandidates {
		conclusionStage.Candidates = append(conclusionStage.Candidates, entities.ConclusionCandidate{
			ID:     c.ID,
			Text:   c.Text,
			Status: entities.SuggestionStatus(c.Status),
		})
	}
	scriptureStage := entities.ScriptureStage{
		Phase:  entities.StagePhase(item.ScripturePhase),
		Reason: item.ScriptureReason,
	}
	for _, c := range item.ScriptureCandidates {
		scriptureStage.Candidates = append(scriptureStage.Candidates, entities.ScriptureCandidate{
			ReflectionID: c.ReflectionID,
			Reason:       c.Reason,
			Similarity:   c.Similarity,
			Status:       entities.SuggestionStatus(c.Status),
		})
	}

	return entities.ReconstructConceptCard(
		id,
		item.UserID,
		item.UserName,
		item.ConceptName,
		question,
		item.AStatement,
		item.Conclusion,
		links,
		fromResponseItems(item.Responses),
		reactionStage,
		conclusionStage,
		scriptureStage,
		utils.ParseTimestampOrZero(item.CreatedAt),
		utils.ParseTimestampOrZero(item.UpdatedAt),
	)
}

func toResponseItems(snippets []entities.ResponseSnippet) []responseItem {
	items := make([]responseItem, 0, len(snippets))
	for _, s := range snippets {
		items = append(items, responseItem{
			ID:        s.ID,
			Text:      s.Text,
			Pinned:    s.Pinned,
			Source:    string(s.Source),
			Status:    string(s.Status),
			CreatedAt: utils.FormatTimestamp(s.CreatedAt),
		})
	}
	return items
}

func fromResponseItems(items []responseItem) []entities.ResponseSnippet {
	snippets := make([]entities.ResponseSnippet, 0, len(items))
	for _, i := range items {
		snippets = append(snippets, entities.ResponseSnippet{
			ID:        i.ID,
			Text:      i.Text,
			Pinned:    i.Pinned,
			Source:    entities.SnippetSource(i.Source),
			Status:    entities.SuggestionStatus(i.Status),
			CreatedAt: utils.ParseTimestampOrZero(i.CreatedAt),
		})
	}
	return snippets
}
