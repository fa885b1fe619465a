package db

import (
	"context"
	"sort"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/perfdex/model"
)

// fakeDynamo keeps rows in memory, pages queries two rows at a time and leaves the
// last request of the first batch unprocessed.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	rows       map[string]map[int]map[string]*dynamodb.AttributeValue
	batchSizes []int
	deferred   bool
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{rows: make(map[string]map[int]map[string]*dynamodb.AttributeValue)}
}

func keyOf(item map[string]*dynamodb.AttributeValue) (string, int) {
	sk, _ := strconv.Atoi(aws.StringValue(item["SK"].N))
	return aws.StringValue(item["PK"].S), sk
}

func (f *fakeDynamo) BatchWriteItemWithContext(_ aws.Context, in *dynamodb.BatchWriteItemInput, _ ...request.Option) (*dynamodb.BatchWriteItemOutput, error) {
	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]*dynamodb.WriteRequest{}}
	for table, reqs := range in.RequestItems {
		f.batchSizes = append(f.batchSizes, len(reqs))
		if !f.deferred && len(reqs) > 1 {
			f.deferred = true
			out.UnprocessedItems[table] = reqs[len(reqs)-1:]
			reqs = reqs[:len(reqs)-1]
		}
		for _, r := range reqs {
			switch {
			case r.PutRequest != nil:
				pk, sk := keyOf(r.PutRequest.Item)
				if f.rows[pk] == nil {
					f.rows[pk] = make(map[int]map[string]*dynamodb.AttributeValue)
				}
				f.rows[pk][sk] = r.PutRequest.Item
			case r.DeleteRequest != nil:
				pk, sk := keyOf(r.DeleteRequest.Key)
				delete(f.rows[pk], sk)
			}
		}
	}
	if len(out.UnprocessedItems) == 0 {
		out.UnprocessedItems = nil
	}
	return out, nil
}

func (f *fakeDynamo) QueryWithContext(_ aws.Context, in *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	pk := aws.StringValue(in.ExpressionAttributeValues[":pk"].S)
	var sks []int
	for sk := range f.rows[pk] {
		sks = append(sks, sk)
	}
	sort.Ints(sks)

	from := 0
	if in.ExclusiveStartKey != nil {
		_, last := keyOf(in.ExclusiveStartKey)
		from = sort.SearchInts(sks, last+1)
	}
	out := &dynamodb.QueryOutput{}
	for i := from; i < len(sks) && i < from+2; i++ {
		out.Items = append(out.Items, f.rows[pk][sks[i]])
	}
	if from+2 < len(sks) {
		out.LastEvaluatedKey = out.Items[len(out.Items)-1]
	}
	return out, nil
}

func triples(n int) []model.Triple {
	var res []model.Triple
	for i := 0; i < n; i++ {
		res = append(res, model.Triple{
			ScoreNoteID:     "s" + strconv.Itoa(i),
			PerformedNoteID: "p" + strconv.Itoa(i),
			Motivation:      "exactMatch",
		})
	}
	return res
}

func TestDynamoStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := NewDynamoStoreWithClient(fake, "alignments")

	saved := triples(30)
	saved[3] = model.Triple{ScoreNoteID: "s3", Motivation: "omission"}
	require.NoError(t, store.Save(ctx, "take-1", saved))
	assert.Equal(t, []int{25, 1, 5}, fake.batchSizes)

	loaded, err := store.Load(ctx, "take-1")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestDynamoStoreSaveShrinks(t *testing.T) {
	ctx := context.Background()
	store := NewDynamoStoreWithClient(newFakeDynamo(), "alignments")

	require.NoError(t, store.Save(ctx, "take-1", triples(5)))
	require.NoError(t, store.Save(ctx, "take-1", triples(2)))

	loaded, err := store.Load(ctx, "take-1")
	require.NoError(t, err)
	assert.Equal(t, triples(2), loaded)
}

func TestStoresReportMissingAlignments(t *testing.T) {
	ctx := context.Background()
	for name, store := range map[string]Store{
		"memory": NewMemoryStore(),
		"dynamo": NewDynamoStoreWithClient(newFakeDynamo(), "alignments"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(ctx, "nothing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Save(ctx, "empty", nil))
			_, err = store.Load(ctx, "empty")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Save(ctx, "cleared", triples(3)))
			require.NoError(t, store.Save(ctx, "cleared", []model.Triple{}))
			_, err = store.Load(ctx, "cleared")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	saved := triples(2)
	require.NoError(t, store.Save(ctx, "a", saved))
	saved[0].Motivation = "error"

	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "exactMatch", loaded[0].Motivation)
}
