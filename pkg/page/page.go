// Package page defines the normalized page shapes returned by the admin API
// and the decoding rules that map wire responses onto them.
//
// The decode mode is chosen by the calling operation: offset-mode operations
// decode into Envelope, cursor-mode operations decode into CursorPage. The
// mode is never inferred from the response shape.
package page

import (
	"encoding/json"
	"errors"
)

// ErrMalformedPage indicates a response body that is neither a JSON array nor
// a JSON object envelope.
var ErrMalformedPage = errors.New("malformed page response")

// Envelope is the normalized offset-mode page.
//
// Total, PageNum and Limit are nil when the server omitted them. Items is
// never nil. Item ordering is server-authoritative and preserved as received.
type Envelope[T any] struct {
	Items   []T
	Total   *int
	PageNum *int
	Limit   *int
}

// CursorPage is one cursor-mode page.
//
// NextCursor is the opaque server-issued token for the following page, nil on
// the final page. The client never parses or constructs cursor values.
type CursorPage[T any] struct {
	Items      []T
	NextCursor *string
}

// HasMore reports whether the server indicated a following page.
func (p CursorPage[T]) HasMore() bool {
	return p.NextCursor != nil && *p.NextCursor != ""
}

// wireEnvelope is the offset-mode object envelope as sent by the server.
type wireEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Total *int            `json:"total"`
	Page  *int            `json:"page"`
	Limit *int            `json:"limit"`
}

// wireCursorPage is the cursor-mode object envelope as sent by the server.
type wireCursorPage struct {
	Data       json.RawMessage `json:"data"`
	NextCursor *string         `json:"nextCursor"`
}

// MarshalJSON re-emits the envelope in its wire form, so that
// Normalize(json.Marshal(e)) round-trips to a structurally equal envelope.
func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	items := e.Items
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEnvelope{
		Data:  data,
		Total: e.Total,
		Page:  e.PageNum,
		Limit: e.Limit,
	})
}

// Normalize converts a heterogeneous offset-mode list response into a uniform
// Envelope. Deployed backends return either a bare JSON array or a
// {data, total, page, limit} object for the same routes; both are accepted
// here so the tolerance stays in one place.
//
// Rules:
//   - absent body (nil, empty, JSON null) yields an empty envelope, no error
//   - bare array yields items with no metadata
//   - object envelope yields data as items (empty when data is missing or not
//     an array) with total/page/limit passed through, nil meaning absent
//
// Normalize is pure and idempotent with respect to Envelope.MarshalJSON.
func Normalize[T any](raw json.RawMessage) (Envelope[T], error) {
	raw = trimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Envelope[T]{Items: []T{}}, nil
	}

	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return Envelope[T]{}, err
		}
		if items == nil {
			items = []T{}
		}
		return Envelope[T]{Items: items}, nil

	case '{':
		var wire wireEnvelope
		if err := json.Unmarshal(raw, &wire); err != nil {
			return Envelope[T]{}, err
		}
		env := Envelope[T]{
			Items:   []T{},
			Total:   wire.Total,
			PageNum: wire.Page,
			Limit:   wire.Limit,
		}
		data := trimSpace(wire.Data)
		if len(data) == 0 || data[0] != '[' {
			// Missing or non-array data field normalizes to no items.
			return env, nil
		}
		if err := json.Unmarshal(data, &env.Items); err != nil {
			return Envelope[T]{}, err
		}
		if env.Items == nil {
			env.Items = []T{}
		}
		return env, nil
	}

	return Envelope[T]{}, ErrMalformedPage
}

// DecodeCursorPage converts a cursor-mode response into a CursorPage. The
// body must be the {data, nextCursor} object envelope.
func DecodeCursorPage[T any](raw json.RawMessage) (CursorPage[T], error) {
	raw = trimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return CursorPage[T]{Items: []T{}}, nil
	}
	if raw[0] != '{' {
		return CursorPage[T]{}, ErrMalformedPage
	}

	var wire wireCursorPage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return CursorPage[T]{}, err
	}

	p := CursorPage[T]{Items: []T{}, NextCursor: wire.NextCursor}
	data := trimSpace(wire.Data)
	if len(data) == 0 || data[0] != '[' {
		return p, nil
	}
	if err := json.Unmarshal(data, &p.Items); err != nil {
		return CursorPage[T]{}, err
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p, nil
}

// trimSpace strips leading/trailing JSON whitespace without allocating.
func trimSpace(raw []byte) []byte {
	start := 0
	for start < len(raw) && isSpace(raw[start]) {
		start++
	}
	end := len(raw)
	for end > start && isSpace(raw[end-1]) {
		end--
	}
	return raw[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
