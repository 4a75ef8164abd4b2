package shopstream

import (
	"context"
	"testing"
)

func TestMemoryEventLog(t *testing.T) {
	suite := NewEventLogValidationSuite(context.Background(), NewMemoryEventLog())
	suite.Run(t)
}
