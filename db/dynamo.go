package db

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"

	"github.com/jsphweid/perfdex/model"
)

// DynamoDB caps a batch write at 25 requests.
const maxBatchWrite = 25

const maxUnprocessedRetries = 5

// tripleItem is one row: PK is the alignment id, SK the triple's position.
type tripleItem struct {
	PK              string `dynamodbav:"PK"`
	SK              int    `dynamodbav:"SK"`
	ScoreNoteID     string `dynamodbav:"ScoreNoteId,omitempty"`
	PerformedNoteID string `dynamodbav:"PerformedNoteId,omitempty"`
	Motivation      string `dynamodbav:"Motivation"`
}

type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

// NewDynamoStore connects to DynamoDB, or to a local instance when endpoint is set.
func NewDynamoStore(table, endpoint, region string) (*DynamoStore, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "Could not create a new DynamoDB session")
	}
	return NewDynamoStoreWithClient(dynamodb.New(sess), table), nil
}

func NewDynamoStoreWithClient(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (d *DynamoStore) Save(ctx context.Context, id string, triples []model.Triple) error {
	existing, err := d.query(ctx, id)
	if err != nil {
		return err
	}

	var requests []*dynamodb.WriteRequest
	for i, t := range triples {
		item, err := dynamodbattribute.MarshalMap(tripleItem{
			PK:              id,
			SK:              i,
			ScoreNoteID:     t.ScoreNoteID,
			PerformedNoteID: t.PerformedNoteID,
			Motivation:      t.Motivation,
		})
		if err != nil {
			return errors.Wrap(err, "encoding triple")
		}
		requests = append(requests, &dynamodb.WriteRequest{PutRequest: &dynamodb.PutRequest{Item: item}})
	}
	for _, old := range existing {
		if old.SK < len(triples) {
			continue
		}
		key, err := dynamodbattribute.MarshalMap(struct {
			PK string `dynamodbav:"PK"`
			SK int    `dynamodbav:"SK"`
		}{old.PK, old.SK})
		if err != nil {
			return errors.Wrap(err, "encoding key")
		}
		requests = append(requests, &dynamodb.WriteRequest{DeleteRequest: &dynamodb.DeleteRequest{Key: key}})
	}

	for start := 0; start < len(requests); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(requests) {
			end = len(requests)
		}
		if err := d.batchWrite(ctx, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (d *DynamoStore) batchWrite(ctx context.Context, requests []*dynamodb.WriteRequest) error {
	pending := map[string][]*dynamodb.WriteRequest{d.table: requests}
	for attempt := 0; len(pending) > 0; attempt++ {
		if attempt > maxUnprocessedRetries {
			return errors.Errorf("DynamoDB left %d writes unprocessed", len(pending[d.table]))
		}
		out, err := d.client.BatchWriteItemWithContext(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return errors.Wrap(err, "Error from DynamoDB")
		}
		pending = out.UnprocessedItems
	}
	return nil
}

func (d *DynamoStore) query(ctx context.Context, id string) ([]tripleItem, error) {
	var items []tripleItem
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.table),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk": {S: aws.String(id)},
		},
		ConsistentRead: aws.Bool(true),
	}
	for {
		out, err := d.client.QueryWithContext(ctx, input)
		if err != nil {
			return nil, errors.Wrap(err, "Error from DynamoDB")
		}
		var page []tripleItem
		if err := dynamodbattribute.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, errors.Wrap(err, "decoding triples")
		}
		items = append(items, page...)
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// Load returns the triples in the order they were saved.
func (d *DynamoStore) Load(ctx context.Context, id string) ([]model.Triple, error) {
	items, err := d.query(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.Wrap(ErrNotFound, id)
	}
	triples := make([]model.Triple, len(items))
	for _, it := range items {
		if it.SK < 0 || it.SK >= len(items) {
			return nil, errors.Errorf("alignment %s has a gap at position %d", id, it.SK)
		}
		triples[it.SK] = model.Triple{
			ScoreNoteID:     it.ScoreNoteID,
			PerformedNoteID: it.PerformedNoteID,
			Motivation:      it.Motivation,
		}
	}
	return triples, nil
}
