package dynamo

import (
	"context"
	"testing"

	ss "github.com/kestrelworks/shopstream"
)

func TestDynamoEventLog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container backed event log test")
	}

	ctx := context.Background()
	log, tearDown, err := DynamoTestLog(ctx)
	if err != nil {
		t.Fatalf("failed to create test log. %+v", err)
	}
	defer tearDown()

	suite := ss.NewEventLogValidationSuite(ctx, log)
	suite.Run(t)
}
