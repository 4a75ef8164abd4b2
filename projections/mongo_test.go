package projections

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func mongoTestStore(t *testing.T) *MongoReadStore[widgetRecord] {
	t.Helper()

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				ExposedPorts: []string{"27017/tcp"},
				WaitingFor:   wait.ForListeningPort("27017"),
			},
			Started: true,
		},
	)
	if err != nil {
		t.Fatalf("failed to start mongo. %+v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongo. %+v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to resolve mongo host. %+v", err)
	}

	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		t.Fatalf("failed to resolve mongo port. %+v", err)
	}

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("failed to connect to mongo. %+v", err)
	}
	t.Cleanup(func() {
		_ = client.Disconnect(ctx)
	})

	return NewMongoReadStore[widgetRecord](client.Database("test").Collection("widgets"))
}

func TestMongoReadStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container backed read store test")
	}

	ctx := context.Background()
	store := mongoTestStore(t)

	t.Run("get on an empty collection is a miss", func(t *testing.T) {
		_, found, err := store.Get(ctx, "7")
		assert.Nil(t, err)
		assert.False(t, found)
	})

	t.Run("upsert inserts then replaces", func(t *testing.T) {
		assert.Nil(t, store.Upsert(ctx, widgetRecord{ID: "7", Name: "sprocket"}))
		assert.Nil(t, store.Upsert(ctx, widgetRecord{ID: "7", Name: "cog"}))

		record, found, err := store.Get(ctx, "7")
		assert.Nil(t, err)
		assert.True(t, found)
		assert.Equal(t, "cog", record.Name)
	})

	t.Run("list returns records ordered by key", func(t *testing.T) {
		assert.Nil(t, store.Upsert(ctx, widgetRecord{ID: "3", Name: "axle"}))

		records, err := store.List(ctx)
		assert.Nil(t, err)
		assert.Equal(t, []widgetRecord{
			{ID: "3", Name: "axle"},
			{ID: "7", Name: "cog"},
		}, records)
	})

	t.Run("delete removes the record and redelivery is a no-op", func(t *testing.T) {
		assert.Nil(t, store.Delete(ctx, "7"))
		assert.Nil(t, store.Delete(ctx, "7"))

		_, found, err := store.Get(ctx, "7")
		assert.Nil(t, err)
		assert.False(t, found)
	})
}
