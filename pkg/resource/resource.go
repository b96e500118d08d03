// Package resource provides stateless, typed REST operations against one
// entity collection of the admin API. Operations map arguments to a single
// network round trip; caching, invalidation and retries live elsewhere.
package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/storefront-kit/adminapi/pkg/cache"
	"github.com/storefront-kit/adminapi/pkg/client"
	"github.com/storefront-kit/adminapi/pkg/page"
)

// Transport performs one admin API round trip. *client.Client satisfies it.
type Transport interface {
	Do(ctx context.Context, method, route string, query url.Values, body any) (json.RawMessage, error)
}

// Resource is the typed operation set for one entity collection.
//
// The REST convention assumed of every entity:
//
//	GET    /{entity}                          list (offset)
//	GET    /{entity}/search                   search (offset or cursor)
//	GET    /{entity}/{id}                     fetch by ID
//	POST   /{entity}                          create
//	PUT    /{entity}/{id}                     update
//	DELETE /{entity}/{id}                     delete
//	POST   /{entity}/{id}/{relation}          link related IDs
//	DELETE /{entity}/{id}/{relation}/{rid}    unlink one related ID
type Resource[T any] struct {
	transport Transport
	entity    string
}

// New creates the resource for an entity collection path segment, e.g.
// "products".
func New[T any](transport Transport, entity string) *Resource[T] {
	return &Resource[T]{transport: transport, entity: entity}
}

// Entity returns the entity path segment.
func (r *Resource[T]) Entity() string {
	return r.entity
}

// List fetches one offset-mode page of the collection. Empty-valued filters
// are not sent as query parameters.
func (r *Resource[T]) List(ctx context.Context, filters cache.Filters) (page.Envelope[T], error) {
	raw, err := r.transport.Do(ctx, http.MethodGet, "/"+r.entity, queryParams(filters), nil)
	if err != nil {
		return page.Envelope[T]{}, err
	}
	return page.Normalize[T](raw)
}

// Search fetches one offset-mode page of search results. The "query" filter
// is required; an empty query is a caller-side precondition violation and
// never reaches the network.
func (r *Resource[T]) Search(ctx context.Context, filters cache.Filters) (page.Envelope[T], error) {
	route := "/" + r.entity + "/search"
	if filters["query"] == "" {
		return page.Envelope[T]{}, client.PreconditionViolation(route, "query must not be empty")
	}

	raw, err := r.transport.Do(ctx, http.MethodGet, route, queryParams(filters), nil)
	if err != nil {
		return page.Envelope[T]{}, err
	}
	return page.Normalize[T](raw)
}

// SearchCursor fetches one cursor-mode page of search results. cursor is the
// opaque server-issued token from the previous page, empty for the first
// page; it is passed through verbatim, never parsed or constructed.
func (r *Resource[T]) SearchCursor(ctx context.Context, query, cursor string, limit int) (page.CursorPage[T], error) {
	route := "/" + r.entity + "/search"
	if query == "" {
		return page.CursorPage[T]{}, client.PreconditionViolation(route, "query must not be empty")
	}

	params := url.Values{}
	params.Set("query", query)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	raw, err := r.transport.Do(ctx, http.MethodGet, route, params, nil)
	if err != nil {
		return page.CursorPage[T]{}, err
	}
	return page.DecodeCursorPage[T](raw)
}

// Get fetches one record by ID. A missing record surfaces as an error
// satisfying client.IsNotFound.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	route := "/" + r.entity + "/" + id
	if id == "" {
		return zero, client.PreconditionViolation(route, "id must not be empty")
	}

	raw, err := r.transport.Do(ctx, http.MethodGet, route, nil, nil)
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

// Create creates a record and returns the server's version of it.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var zero T
	raw, err := r.transport.Do(ctx, http.MethodPost, "/"+r.entity, nil, payload)
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

// Update updates a record and returns the server's version of it.
func (r *Resource[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	var zero T
	route := "/" + r.entity + "/" + id
	if id == "" {
		return zero, client.PreconditionViolation(route, "id must not be empty")
	}

	raw, err := r.transport.Do(ctx, http.MethodPut, route, nil, payload)
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

// Delete deletes a record. Servers may return the deleted record; when they
// do it is decoded so the caller can patch caches keyed by its ID fields,
// otherwise the zero value is returned.
func (r *Resource[T]) Delete(ctx context.Context, id string) (T, error) {
	var zero T
	route := "/" + r.entity + "/" + id
	if id == "" {
		return zero, client.PreconditionViolation(route, "id must not be empty")
	}

	raw, err := r.transport.Do(ctx, http.MethodDelete, route, nil, nil)
	if err != nil {
		return zero, err
	}
	return decodeItem[T](raw)
}

// relationPayload is the body of a relation link request.
type relationPayload struct {
	RelationIDs []string `json:"relationIds"`
}

// AddRelations links related IDs to a record. Linking an already-linked ID
// is a no-op duplicate, not an error; linking an empty set is a local no-op
// with no round trip.
func (r *Resource[T]) AddRelations(ctx context.Context, id, relation string, relatedIDs []string) error {
	route := "/" + r.entity + "/" + id + "/" + relation
	if id == "" {
		return client.PreconditionViolation(route, "id must not be empty")
	}
	if len(relatedIDs) == 0 {
		return nil
	}

	_, err := r.transport.Do(ctx, http.MethodPost, route, nil, relationPayload{RelationIDs: relatedIDs})
	return err
}

// RemoveRelation unlinks one related ID from a record.
func (r *Resource[T]) RemoveRelation(ctx context.Context, id, relation, relatedID string) error {
	route := "/" + r.entity + "/" + id + "/" + relation + "/" + relatedID
	if id == "" || relatedID == "" {
		return client.PreconditionViolation(route, "id must not be empty")
	}

	_, err := r.transport.Do(ctx, http.MethodDelete, route, nil, nil)
	return err
}

// queryParams converts filters to query parameters, dropping empty values.
func queryParams(filters cache.Filters) url.Values {
	if len(filters) == 0 {
		return nil
	}
	params := url.Values{}
	for k, v := range filters {
		if v == "" {
			continue
		}
		params.Set(k, v)
	}
	return params
}

// decodeItem decodes a single-record body; an empty body yields the zero
// value.
func decodeItem[T any](raw json.RawMessage) (T, error) {
	var item T
	if len(raw) == 0 || string(raw) == "null" {
		return item, nil
	}
	if err := json.Unmarshal(raw, &item); err != nil {
		return item, err
	}
	return item, nil
}
