package queryhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelworks/shopstream/cache"
	"github.com/kestrelworks/shopstream/projections"
)

type widget struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (w widget) RecordKey() string {
	return w.ID
}

func seededStore(t *testing.T, widgets ...widget) *projections.MemoryReadStore[widget] {
	t.Helper()

	store := projections.NewMemoryReadStore[widget]()
	for _, w := range widgets {
		assert.NoError(t, store.Upsert(context.Background(), w))
	}

	return store
}

func get(handler http.Handler, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", target, nil))

	return recorder
}

func TestGetReturnsTheRecord(t *testing.T) {
	store := seededStore(t, widget{ID: "7", Name: "sprocket"})
	handler := NewHandler[widget]("widgets", store)

	response := get(handler, "/7")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"id":"7","name":"sprocket"}`, response.Body.String())
}

func TestGetUnknownKeyIsNotFound(t *testing.T) {
	store := seededStore(t)
	handler := NewHandler[widget]("widgets", store)

	response := get(handler, "/7")

	assert.Equal(t, http.StatusNotFound, response.Code)
}

func TestListReturnsRecordsOrderedByKey(t *testing.T) {
	store := seededStore(t,
		widget{ID: "b", Name: "bolt"},
		widget{ID: "a", Name: "axle"},
	)
	handler := NewHandler[widget]("widgets", store)

	response := get(handler, "/")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `[{"id":"a","name":"axle"},{"id":"b","name":"bolt"}]`, response.Body.String())
}

func TestListWithoutRecordsIsAnEmptyArray(t *testing.T) {
	store := seededStore(t)
	handler := NewHandler[widget]("widgets", store)

	response := get(handler, "/")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `[]`, response.Body.String())
}

func TestGetPopulatesTheCache(t *testing.T) {
	store := seededStore(t, widget{ID: "7", Name: "sprocket"})
	memory := cache.NewMemoryCache()
	handler := NewHandler[widget]("widgets", store, Cached[widget](memory, time.Minute))

	response := get(handler, "/7")
	assert.Equal(t, http.StatusOK, response.Code)

	body, found, err := memory.Get(context.Background(), cache.IDKey("widgets", "7"))
	assert.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"id":"7","name":"sprocket"}`, string(body))
}

func TestGetServesFromTheCache(t *testing.T) {
	store := seededStore(t)
	memory := cache.NewMemoryCache()
	assert.NoError(t, memory.Set(context.Background(), cache.IDKey("widgets", "7"), []byte(`{"id":"7","name":"cached"}`), 0))

	handler := NewHandler[widget]("widgets", store, Cached[widget](memory, time.Minute))

	response := get(handler, "/7")

	assert.Equal(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"id":"7","name":"cached"}`, response.Body.String())
}
