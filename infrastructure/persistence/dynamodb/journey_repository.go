package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"journeymap/application/ports"
	"journeymap/domain/config"
	"journeymap/domain/core/aggregates"
	pkgerrors "journeymap/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Client is the subset of the DynamoDB API the repository uses
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// JourneyRepository implements ports.JourneyRepository using DynamoDB.
//
// One item per journey:
//
//	PK     JOURNEY#<id>
//	SK     METADATA
//	GSI1PK USER#<owner>      (owner index)
//	GSI1SK UPDATED#<unix nanos, zero padded>
type JourneyRepository struct {
	client    Client
	tableName string
	indexName string
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewJourneyRepository creates a new JourneyRepository
func NewJourneyRepository(client Client, tableName, indexName string, cfg *config.DomainConfig, logger *zap.Logger) *JourneyRepository {
	return &JourneyRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		cfg:       cfg,
		logger:    logger,
	}
}

var _ ports.JourneyRepository = (*JourneyRepository)(nil)

// journeyItem represents the DynamoDB item structure for a journey
type journeyItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	JourneyID   string `dynamodbav:"JourneyID"`
	UserID      string `dynamodbav:"UserID"`
	Title       string `dynamodbav:"Title"`
	Description string `dynamodbav:"Description"`
	Scenario    string `dynamodbav:"Scenario"`
	NodeCount   int    `dynamodbav:"NodeCount"`
	EdgeCount   int    `dynamodbav:"EdgeCount"`
	Content     string `dynamodbav:"Content"` // JSON encoded aggregates.Content
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
	Version     int    `dynamodbav:"Version"`
}

func journeyPK(id string) string { return "JOURNEY#" + id }
func ownerPK(ownerID string) string { return "USER#" + ownerID }

func updatedSK(t time.Time) string {
	return "UPDATED#" + fmt.Sprintf("%020d", t.UnixNano())
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: journeyPK(id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Save persists a journey. A write carrying a version not newer than the
// stored one is rejected as a concurrent modification.
func (r *JourneyRepository) Save(ctx context.Context, journey *aggregates.Journey) error {
	snap := journey.Snapshot()
	content, err := json.Marshal(snap.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal journey content: %w", err)
	}
	counts := snap.Content.Counts()

	item := journeyItem{
		PK:          journeyPK(snap.ID),
		SK:          "METADATA",
		GSI1PK:      ownerPK(snap.OwnerID),
		GSI1SK:      updatedSK(snap.UpdatedAt),
		EntityType:  "JOURNEY",
		JourneyID:   snap.ID,
		UserID:      snap.OwnerID,
		Title:       snap.Title,
		Description: snap.Description,
		Scenario:    snap.Scenario,
		NodeCount:   counts[3],
		EdgeCount:   counts[4],
		Content:     string(content),
		CreatedAt:   snap.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   snap.UpdatedAt.Format(time.RFC3339Nano),
		Version:     snap.Version,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal journey: %w", err)
	}

	cond := expression.Or(
		expression.AttributeNotExists(expression.Name("PK")),
		expression.Name("Version").LessThan(expression.Value(snap.Version)),
	)
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.NewConflictError("journey was modified concurrently").
				WithCode("VERSION_CONFLICT").
				WithCause(err)
		}
		r.logger.Error("Failed to save journey to DynamoDB",
			zap.Error(err),
			zap.String("journeyID", snap.ID),
		)
		return pkgerrors.NewDatabaseError("save journey", err)
	}

	r.logger.Debug("Saved journey to DynamoDB",
		zap.String("journeyID", snap.ID),
		zap.String("userID", snap.OwnerID),
		zap.Int("version", snap.Version),
	)
	return nil
}

// GetByID retrieves a journey by its ID
func (r *JourneyRepository) GetByID(ctx context.Context, id string) (*aggregates.Journey, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get journey", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrJourneyNotFound, id)
	}
	return r.toJourney(out.Item)
}

// ListByOwner queries the owner index newest first. The whole partition is
// read to report the total; users own tens of journeys, not thousands.
func (r *JourneyRepository) ListByOwner(ctx context.Context, ownerID string, opts ports.ListOptions) ([]*aggregates.Journey, int, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(ownerPK(ownerID)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
	}

	var journeys []*aggregates.Journey
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, 0, pkgerrors.NewDatabaseError("list journeys", err)
		}
		for _, item := range out.Items {
			j, err := r.toJourney(item)
			if err != nil {
				r.logger.Warn("Skipping unreadable journey item", zap.Error(err))
				continue
			}
			journeys = append(journeys, j)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	aggregates.SortedByUpdate(journeys)
	return ports.Page(journeys, opts), len(journeys), nil
}

// Delete removes a journey
func (r *JourneyRepository) Delete(ctx context.Context, id string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      itemKey(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%w: %s", pkgerrors.ErrJourneyNotFound, id)
		}
		return pkgerrors.NewDatabaseError("delete journey", err)
	}

	r.logger.Info("Deleted journey from DynamoDB", zap.String("journeyID", id))
	return nil
}

func (r *JourneyRepository) toJourney(av map[string]types.AttributeValue) (*aggregates.Journey, error) {
	var item journeyItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journey: %w", err)
	}

	snap := aggregates.Snapshot{
		ID:          item.JourneyID,
		OwnerID:     item.UserID,
		Title:       item.Title,
		Description: item.Description,
		Scenario:    item.Scenario,
		Version:     item.Version,
	}
	if err := json.Unmarshal([]byte(item.Content), &snap.Content); err != nil {
		return nil, fmt.Errorf("journey %s: bad content: %w", item.JourneyID, err)
	}
	var err error
	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, item.CreatedAt); err != nil {
		return nil, fmt.Errorf("journey %s: bad createdAt: %w", item.JourneyID, err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("journey %s: bad updatedAt: %w", item.JourneyID, err)
	}
	return aggregates.FromSnapshot(snap, r.cfg)
}
