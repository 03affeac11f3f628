package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"news-summarizer/internal/domain"
)

const (
	pkPrefixTopic = "TOPIC#"
	skPrefixURL   = "URL#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table used as the dedup ledger.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func topicPK(partition string) string {
	return pkPrefixTopic + partition
}

func urlSK(key domain.DedupKey) string {
	return skPrefixURL + string(key)
}

// Exists reports whether key has been recorded for partition.
func (c *Client) Exists(ctx context.Context, partition string, key domain.DedupKey) (bool, error) {
	if partition == "" || key == "" {
		return false, errors.New("repository: Exists: partition and key are required")
	}
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: topicPK(partition)},
			"SK": &types.AttributeValueMemberS{Value: urlSK(key)},
		},
		ProjectionExpression: aws.String("PK"),
		ConsistentRead:       aws.Bool(true),
	})
	if err != nil {
		return false, fmt.Errorf("repository: Exists get item: %w", err)
	}
	return out != nil && len(out.Item) > 0, nil
}

// Insert records entry. A conditional-check failure means another writer got
// there first and is reported as success.
func (c *Client) Insert(ctx context.Context, entry domain.LedgerEntry) error {
	if entry.Partition == "" || entry.Key == "" {
		return errors.New("repository: Insert: partition and key are required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = c.now()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                ledgerItem(entry),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil
		}
		return fmt.Errorf("repository: Insert: %w", err)
	}
	return nil
}

func ledgerItem(e domain.LedgerEntry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: topicPK(e.Partition)},
		"SK":        &types.AttributeValueMemberS{Value: urlSK(e.Key)},
		"partition": &types.AttributeValueMemberS{Value: e.Partition},
		"key":       &types.AttributeValueMemberS{Value: string(e.Key)},
		"title":     &types.AttributeValueMemberS{Value: e.Title},
		"url":       &types.AttributeValueMemberS{Value: e.URL},
		"createdAt": &types.AttributeValueMemberS{Value: e.CreatedAt.UTC().Format(time.RFC3339)},
	}
}
