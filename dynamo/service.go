package dynamo

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"

	ss "github.com/kestrelworks/shopstream"
	"github.com/kestrelworks/shopstream/support"
)

var Live = wire.NewSet(
	support.AWSConfig,
	Client,
	LiveRecordsTableName,
	NewEventLog,
	wire.Bind(new(ss.EventLog), new(*EventLog)),
)

var Local = wire.NewSet(
	LocalEventLog,
	wire.Bind(new(ss.EventLog), new(*EventLog)),
)

var Test = wire.NewSet(
	TestLog,
	wire.Bind(new(ss.EventLog), new(*EventLog)),
)

func Client(cfg aws.Config) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg)
}

func LiveRecordsTableName() (RecordsTableName, error) {
	table := os.Getenv("DYNAMODB_RECORDS_TABLE_NAME")
	if len(table) == 0 {
		return "", errors.New("DYNAMODB_RECORDS_TABLE_NAME is not set")
	}

	return RecordsTableName(table), nil
}

func TestLog(ctx context.Context) (*EventLog, func(), error) {
	return DynamoTestLog(ctx)
}
