package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/storefront-kit/adminapi/pkg/cache"
	"github.com/storefront-kit/adminapi/pkg/client"
)

type product struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Price int    `json:"price,omitempty"`
}

// fakeTransport records calls and plays back canned responses.
type fakeTransport struct {
	calls    []call
	response json.RawMessage
	err      error
}

type call struct {
	method string
	route  string
	query  url.Values
	body   any
}

func (f *fakeTransport) Do(_ context.Context, method, route string, query url.Values, body any) (json.RawMessage, error) {
	f.calls = append(f.calls, call{method: method, route: route, query: query, body: body})
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeTransport) lastCall(t *testing.T) call {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("No transport call recorded")
	}
	return f.calls[len(f.calls)-1]
}

func TestResource_List(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(`{"data":[{"id":"1"}],"total":1}`)}
	products := New[product](transport, "products")

	env, err := products.List(context.Background(), cache.Filters{"storeId": "a", "page": ""})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	c := transport.lastCall(t)
	if c.method != "GET" || c.route != "/products" {
		t.Errorf("Call = %s %s", c.method, c.route)
	}
	if c.query.Get("storeId") != "a" {
		t.Errorf("storeId param = %q", c.query.Get("storeId"))
	}
	if _, sent := c.query["page"]; sent {
		t.Error("Empty filter value must not be sent as a query parameter")
	}

	want := []product{{ID: "1"}}
	if diff := cmp.Diff(want, env.Items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if env.Total == nil || *env.Total != 1 {
		t.Errorf("Total = %v, want 1", env.Total)
	}
}

func TestResource_List_BareArrayResponse(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(`[{"id":"1"},{"id":"2"}]`)}
	products := New[product](transport, "products")

	env, err := products.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(env.Items) != 2 {
		t.Errorf("Items = %d, want 2", len(env.Items))
	}
	if env.Total != nil {
		t.Errorf("Total = %v, want nil for bare array", env.Total)
	}
}

func TestResource_Search_EmptyQueryIsPrecondition(t *testing.T) {
	transport := &fakeTransport{}
	products := New[product](transport, "products")

	_, err := products.Search(context.Background(), cache.Filters{"query": ""})
	if !errors.Is(err, client.ErrPrecondition) {
		t.Fatalf("Expected precondition violation, got %v", err)
	}
	if len(transport.calls) != 0 {
		t.Error("Precondition violation must not reach the network")
	}
}

func TestResource_Search(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(`{"data":[{"id":"1"}]}`)}
	products := New[product](transport, "products")

	_, err := products.Search(context.Background(), cache.Filters{"query": "red", "limit": "10"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	c := transport.lastCall(t)
	if c.route != "/products/search" {
		t.Errorf("Route = %s", c.route)
	}
	if c.query.Get("query") != "red" {
		t.Errorf("query param = %q", c.query.Get("query"))
	}
}

func TestResource_SearchCursor(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(`{"data":[{"id":"1"}],"nextCursor":"c1"}`)}
	products := New[product](transport, "products")

	p, err := products.SearchCursor(context.Background(), "red", "", 20)
	if err != nil {
		t.Fatalf("SearchCursor failed: %v", err)
	}

	c := transport.lastCall(t)
	if _, sent := c.query["cursor"]; sent {
		t.Error("First page must not send a cursor parameter")
	}
	if c.query.Get("limit") != "20" {
		t.Errorf("limit param = %q", c.query.Get("limit"))
	}
	if !p.HasMore() {
		t.Error("HasMore should be true")
	}

	// Follow-up page passes the opaque token through verbatim.
	transport.response = json.RawMessage(`{"data":[],"nextCursor":null}`)
	if _, err := products.SearchCursor(context.Background(), "red", *p.NextCursor, 20); err != nil {
		t.Fatalf("SearchCursor page 2 failed: %v", err)
	}
	if got := transport.lastCall(t).query.Get("cursor"); got != "c1" {
		t.Errorf("cursor param = %q, want c1", got)
	}
}

func TestResource_SearchCursor_EmptyQuery(t *testing.T) {
	transport := &fakeTransport{}
	products := New[product](transport, "products")

	_, err := products.SearchCursor(context.Background(), "", "", 20)
	if !errors.Is(err, client.ErrPrecondition) {
		t.Fatalf("Expected precondition violation, got %v", err)
	}
	if len(transport.calls) != 0 {
		t.Error("Precondition violation must not reach the network")
	}
}

func TestResource_Get(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(`{"id":"42","name":"Lamp"}`)}
	products := New[product](transport, "products")

	got, err := products.Get(context.Background(), "42")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "42" || got.Name != "Lamp" {
		t.Errorf("Got %+v", got)
	}

	c := transport.lastCall(t)
	if c.method != "GET" || c.route != "/products/42" {
		t.Errorf("Call = %s %s", c.method, c.route)
	}
}

func TestResource_Get_NotFoundPropagates(t *testing.T) {
	transport := &fakeTransport{err: &client.APIError{
		StatusCode: 404,
		Class:      client.ErrorClassNotFound,
		Err:        client.ErrNotFound,
	}}
	products := New[product](transport, "products")

	_, err := products.Get(context.Background(), "missing")
	if !client.IsNotFound(err) {
		t.Errorf("Expected NotFound to propagate unchanged, got %v", err)
	}
}

func TestResource_Mutations(t *testing.T) {
	transport := &fakeTransport{response: json.RawMessage(`{"id":"1","name":"Lamp"}`)}
	products := New[product](transport, "products")
	ctx := context.Background()

	if _, err := products.Create(ctx, product{Name: "Lamp"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c := transport.lastCall(t); c.method != "POST" || c.route != "/products" {
		t.Errorf("Create call = %s %s", c.method, c.route)
	}

	if _, err := products.Update(ctx, "1", product{Name: "Desk Lamp"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if c := transport.lastCall(t); c.method != "PUT" || c.route != "/products/1" {
		t.Errorf("Update call = %s %s", c.method, c.route)
	}

	transport.response = nil
	deleted, err := products.Delete(ctx, "1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c := transport.lastCall(t); c.method != "DELETE" || c.route != "/products/1" {
		t.Errorf("Delete call = %s %s", c.method, c.route)
	}
	if deleted.ID != "" {
		t.Errorf("Empty delete body should yield zero value, got %+v", deleted)
	}
}

func TestResource_AddRelations(t *testing.T) {
	transport := &fakeTransport{}
	products := New[product](transport, "products")
	ctx := context.Background()

	if err := products.AddRelations(ctx, "1", "categories", []string{"c1", "c2"}); err != nil {
		t.Fatalf("AddRelations failed: %v", err)
	}

	c := transport.lastCall(t)
	if c.method != "POST" || c.route != "/products/1/categories" {
		t.Errorf("Call = %s %s", c.method, c.route)
	}
	payload, ok := c.body.(relationPayload)
	if !ok {
		t.Fatalf("Body = %T", c.body)
	}
	if diff := cmp.Diff([]string{"c1", "c2"}, payload.RelationIDs); diff != "" {
		t.Errorf("RelationIDs mismatch (-want +got):\n%s", diff)
	}
}

func TestResource_AddRelations_EmptySetIsLocalNoop(t *testing.T) {
	transport := &fakeTransport{}
	products := New[product](transport, "products")

	if err := products.AddRelations(context.Background(), "1", "categories", nil); err != nil {
		t.Fatalf("AddRelations failed: %v", err)
	}
	if len(transport.calls) != 0 {
		t.Error("Empty relation set must not reach the network")
	}
}

func TestResource_RemoveRelation(t *testing.T) {
	transport := &fakeTransport{}
	products := New[product](transport, "products")

	if err := products.RemoveRelation(context.Background(), "1", "categories", "c1"); err != nil {
		t.Fatalf("RemoveRelation failed: %v", err)
	}

	c := transport.lastCall(t)
	if c.method != "DELETE" || c.route != "/products/1/categories/c1" {
		t.Errorf("Call = %s %s", c.method, c.route)
	}
}

func TestResource_EmptyIDPreconditions(t *testing.T) {
	transport := &fakeTransport{}
	products := New[product](transport, "products")
	ctx := context.Background()

	checks := []func() error{
		func() error { _, err := products.Get(ctx, ""); return err },
		func() error { _, err := products.Update(ctx, "", nil); return err },
		func() error { _, err := products.Delete(ctx, ""); return err },
		func() error { return products.AddRelations(ctx, "", "categories", []string{"c1"}) },
		func() error { return products.RemoveRelation(ctx, "1", "categories", "") },
	}

	for i, check := range checks {
		if err := check(); !errors.Is(err, client.ErrPrecondition) {
			t.Errorf("Check %d: expected precondition violation, got %v", i, err)
		}
	}
	if len(transport.calls) != 0 {
		t.Error("Precondition violations must not reach the network")
	}
}
