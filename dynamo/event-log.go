package dynamo

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"

	ss "github.com/kestrelworks/shopstream"
)

type RecordsTableName string

func (name RecordsTableName) String() string {
	return string(name)
}

// EventLog is a DynamoDB backed append-only record log. Streams share one
// table; the partition key is the encoded aggregate id and the sort key is
// derived from the record id, so a stream reads back in append order.
type EventLog struct {
	db    *dynamodb.Client
	table string
}

func NewEventLog(db *dynamodb.Client, table RecordsTableName) *EventLog {
	return &EventLog{db: db, table: string(table)}
}

type storedRecord struct {
	PartitionKey string       `dynamodbav:"pk"`
	SortKey      string       `dynamodbav:"sk"`
	RecordId     string       `dynamodbav:"record_id"`
	EventType    string       `dynamodbav:"event_type"`
	Encoding     string       `dynamodbav:"encoding"`
	Payload      []byte       `dynamodbav:"payload"`
	Timestamp    ss.Timestamp `dynamodbav:"timestamp"`
}

func partitionKey(id ss.AggregateId) string {
	return id.Encode().String()
}

func sortKey(id ss.RecordId) string {
	return strings.Join([]string{"record#", id.String()}, "")
}

// Append writes the batch record by record, in order, with no internal
// retries. A failure part way through leaves the already written prefix in
// place; re-appending the same records is safe because each put is
// conditional on its key.
func (l *EventLog) Append(ctx context.Context, records []ss.Record) error {
	if len(records) == 0 {
		return ss.ErrEmptyAppend
	}

	for _, record := range records {
		item, err := attributevalue.MarshalMap(storedRecord{
			PartitionKey: partitionKey(record.AggregateId),
			SortKey:      sortKey(record.RecordId),
			RecordId:     record.RecordId.String(),
			EventType:    record.EventType.String(),
			Encoding:     record.Data.Encoding,
			Payload:      record.Data.Data,
			Timestamp:    record.Timestamp,
		})
		if err != nil {
			return errors.Wrap(err, "failed to marshal record")
		}

		condition, err := expression.NewBuilder().WithCondition(
			expression.AttributeNotExists(expression.Name("pk")),
		).Build()
		if err != nil {
			return err
		}

		_, err = l.db.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:                 aws.String(l.table),
			Item:                      item,
			ConditionExpression:       condition.Condition(),
			ExpressionAttributeNames:  condition.Names(),
			ExpressionAttributeValues: condition.Values(),
		})
		if err != nil {
			var conditional *types.ConditionalCheckFailedException
			if errors.As(err, &conditional) {
				continue
			}

			var api smithy.APIError
			if errors.As(err, &api) {
				return errors.Wrapf(err, "failed to append record %s: %s", record.RecordId, api.ErrorCode())
			}

			return errors.Wrapf(err, "failed to append record %s", record.RecordId)
		}
	}

	return nil
}

func (l *EventLog) Read(ctx context.Context, id ss.AggregateId) ([]ss.Record, error) {
	query := expression.Key("pk").Equal(expression.Value(partitionKey(id))).And(
		expression.Key("sk").BeginsWith("record#"),
	)

	expr, err := expression.NewBuilder().WithKeyCondition(query).Build()
	if err != nil {
		return nil, err
	}

	var records []ss.Record
	var start map[string]types.AttributeValue
	for {
		out, err := l.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(l.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
		})
		if err != nil {
			return nil, err
		}

		var items []storedRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, err
		}

		for _, item := range items {
			records = append(records, ss.Record{
				RecordId:    ss.RecordId(item.RecordId),
				AggregateId: id,
				EventType:   ss.EventType(item.EventType),
				Data:        ss.Data{Encoding: item.Encoding, Data: item.Payload},
				Timestamp:   item.Timestamp,
			})
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return records, nil
}
