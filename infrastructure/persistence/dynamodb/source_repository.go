package dynamodb

import (
	"context"
	"fmt"

	"github.com/eunyuson/GRACE-sub002/application/ports"
	pkgerrors "github.com/eunyuson/GRACE-sub002/pkg/errors"
	"github.com/eunyuson/GRACE-sub002/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// SourceRepository implements ports.SourceReader using DynamoDB.
// News items and reflections live in the same table as cards; links
// reference them by ID only, nothing enforces the reference holds.
type SourceRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewSourceRepository creates a new SourceRepository
func NewSourceRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.SourceReader {
	return &SourceRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

type newsItemRecord struct {
	NewsID      string `dynamodbav:"NewsID"`
	Title       string `dynamodbav:"Title"`
	Body        string `dynamodbav:"Body"`
	PublishedAt string `dynamodbav:"PublishedAt"`
}

type reflectionRecord struct {
	ReflectionID string `dynamodbav:"ReflectionID"`
	Content      string `dynamodbav:"Content"`
	BibleRef     string `dynamodbav:"BibleRef,omitempty"`
	ParentTitle  string `dynamodbav:"ParentTitle,omitempty"`
	ParentPath   string `dynamodbav:"ParentPath,omitempty"`
}

// GetNewsItem retrieves one news item by ID
func (r *SourceRepository) GetNewsItem(ctx context.Context, id string) (*ports.NewsItem, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("NEWS#%s", id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get news item", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("news item not found: " + id)
	}

	var record newsItemRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal news item: %w", err)
	}

	return &ports.NewsItem{
		ID:          record.NewsID,
		Title:       record.Title,
		Body:        record.Body,
		PublishedAt: utils.ParseTimestampOrZero(record.PublishedAt),
	}, nil
}

// GetReflection retrieves one reflection by ID. The parent path is
// location metadata; the lookup key is the ID alone.
func (r *SourceRepository) GetReflection(ctx context.Context, id, parentPath string) (*ports.Reflection, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("REFLECTION#%s", id)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get reflection", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("reflection not found: " + id)
	}

	var record reflectionRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reflection: %w", err)
	}

	return toReflection(record), nil
}

// ListReflections returns the user's full reflection pool via the GSI
func (r *SourceRepository) ListReflections(ctx context.Context, userID string) ([]ports.Reflection, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("USERREF#%s", userID)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	var reflections []ports.Reflection
	var lastKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list reflections", err)
		}

		for _, raw := range result.Items {
			var record reflectionRecord
			if err := attributevalue.UnmarshalMap(raw, &record); err != nil {
				r.logger.Warn("Skipping unreadable reflection item", zap.Error(err))
				continue
			}
			reflections = append(reflections, *toReflection(record))
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		lastKey = result.LastEvaluatedKey
	}

	return reflections, nil
}

func toReflection(record reflectionRecord) *ports.Reflection {
	return &ports.Reflection{
		ID:          record.ReflectionID,
		Content:     record.Content,
		BibleRef:    record.BibleRef,
		ParentTitle: record.ParentTitle,
		ParentPath:  record.ParentPath,
	}
}
