package queryhttp

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"

	"github.com/kestrelworks/shopstream/cache"
	"github.com/kestrelworks/shopstream/projections"
)

type HandlerOption[T projections.Keyed] func(service *queryService[T])

func Logger[T projections.Keyed](log *zerolog.Logger) HandlerOption[T] {
	return func(service *queryService[T]) {
		service.log = log
	}
}

// Cached serves reads through c, keyed by the query's list and id keys.
// Entries written here are the ones the projection invalidates when the
// underlying records change.
func Cached[T projections.Keyed](c cache.Cache, ttl time.Duration) HandlerOption[T] {
	return func(service *queryService[T]) {
		service.cache = c
		service.ttl = ttl
	}
}

// NewHandler serves one projection's records: GET / lists them and
// GET /{key} returns one.
func NewHandler[T projections.Keyed](query string, store projections.ReadStore[T], options ...HandlerOption[T]) http.Handler {
	service := &queryService[T]{query: query, store: store}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}

	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method("GET", "/", service.listResources())
	r.Method("GET", "/{key}", service.getResource())

	return otelhttp.NewHandler(r, "queries/"+query)
}

type queryService[T projections.Keyed] struct {
	log   *zerolog.Logger
	query string
	store projections.ReadStore[T]
	cache cache.Cache
	ttl   time.Duration
}

func (service *queryService[T]) getResource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")

		if service.serveCached(w, r, cache.IDKey(service.query, key)) {
			return
		}

		record, found, err := service.store.Get(r.Context(), key)
		if err != nil {
			service.log.Info().Err(err).Str("query", service.query).Str("key", key).Msg("failed to load resource")
			http.Error(w, "failed to load resource", http.StatusInternalServerError)
			return
		}

		if !found {
			http.NotFound(w, r)
			return
		}

		service.respond(w, r, cache.IDKey(service.query, key), record)
	}
}

func (service *queryService[T]) listResources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if service.serveCached(w, r, cache.ListKey(service.query)) {
			return
		}

		records, err := service.store.List(r.Context())
		if err != nil {
			service.log.Info().Err(err).Str("query", service.query).Msg("failed to list resources")
			http.Error(w, "failed to list resources", http.StatusInternalServerError)
			return
		}

		if records == nil {
			records = []T{}
		}

		service.respond(w, r, cache.ListKey(service.query), records)
	}
}

func (service *queryService[T]) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	if service.cache == nil {
		return false
	}

	body, found, err := service.cache.Get(r.Context(), key)
	if err != nil || !found {
		return false
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)

	return true
}

func (service *queryService[T]) respond(w http.ResponseWriter, r *http.Request, key string, resource any) {
	body, err := json.MarshalContext(r.Context(), resource)
	if err != nil {
		service.log.Info().Err(err).Str("query", service.query).Msg("failed to encode resource")
		http.Error(w, "failed to encode resource", http.StatusInternalServerError)
		return
	}

	if service.cache != nil {
		_ = service.cache.Set(r.Context(), key, body, service.ttl)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(body)
}
