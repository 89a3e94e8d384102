package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage"
)

// API is the subset of the DynamoDB client used by the stores.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

func NewClient(ctx context.Context, region string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg), nil
}

// IncidentStore keeps incidents in a table keyed by incident_id.
type IncidentStore struct {
	client API
	table  string
}

func NewIncidentStore(client API, table string) *IncidentStore {
	return &IncidentStore{
		client: client,
		table:  table,
	}
}

func (s *IncidentStore) List(ctx context.Context) ([]models.Incident, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	incidents := []models.Incident{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}

		var batch []models.Incident
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal incidents: %w", err)
		}
		incidents = append(incidents, batch...)
	}

	return incidents, nil
}

func (s *IncidentStore) Get(ctx context.Context, incidentID string) (models.Incident, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"incident_id": &types.AttributeValueMemberS{Value: incidentID},
		},
	})
	if err != nil {
		return models.Incident{}, fmt.Errorf("get incident %s: %w", incidentID, err)
	}
	if len(out.Item) == 0 {
		return models.Incident{}, storage.ErrNotFound
	}

	var incident models.Incident
	if err := attributevalue.UnmarshalMap(out.Item, &incident); err != nil {
		return models.Incident{}, fmt.Errorf("unmarshal incident: %w", err)
	}
	return incident, nil
}

func (s *IncidentStore) Put(ctx context.Context, incident models.Incident) error {
	item, err := attributevalue.MarshalMap(incident)
	if err != nil {
		return fmt.Errorf("marshal incident: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put incident %s: %w", incident.IncidentID, err)
	}
	return nil
}

// CommentStore keeps comments under partition key incident_id and sort key
// sort_key.
type CommentStore struct {
	client API
	table  string
}

func NewCommentStore(client API, table string) *CommentStore {
	return &CommentStore{
		client: client,
		table:  table,
	}
}

func (s *CommentStore) ListByIncident(ctx context.Context, incidentID string) ([]models.Comment, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("incident_id = :iid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":iid": &types.AttributeValueMemberS{Value: incidentID},
		},
		ScanIndexForward: aws.Bool(true),
	})

	comments := []models.Comment{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query comments for %s: %w", incidentID, err)
		}

		var batch []models.Comment
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal comments: %w", err)
		}
		comments = append(comments, batch...)
	}

	return comments, nil
}

func (s *CommentStore) Put(ctx context.Context, comment models.Comment) error {
	item, err := attributevalue.MarshalMap(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put comment %s: %w", comment.CommentID, err)
	}
	return nil
}
