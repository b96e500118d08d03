package page

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testItem struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Envelope[testItem]
	}{
		{
			name:     "nil_body",
			raw:      "",
			expected: Envelope[testItem]{Items: []testItem{}},
		},
		{
			name:     "json_null",
			raw:      "null",
			expected: Envelope[testItem]{Items: []testItem{}},
		},
		{
			name:     "bare_array",
			raw:      `[{"id":"1"},{"id":"2"}]`,
			expected: Envelope[testItem]{Items: []testItem{{ID: "1"}, {ID: "2"}}},
		},
		{
			name:     "bare_empty_array",
			raw:      `[]`,
			expected: Envelope[testItem]{Items: []testItem{}},
		},
		{
			name: "full_envelope",
			raw:  `{"data":[{"id":"1"}],"total":42,"page":2,"limit":10}`,
			expected: Envelope[testItem]{
				Items:   []testItem{{ID: "1"}},
				Total:   intPtr(42),
				PageNum: intPtr(2),
				Limit:   intPtr(10),
			},
		},
		{
			name:     "envelope_missing_data",
			raw:      `{"total":0}`,
			expected: Envelope[testItem]{Items: []testItem{}, Total: intPtr(0)},
		},
		{
			name:     "envelope_data_not_array",
			raw:      `{"data":{"id":"1"},"total":1}`,
			expected: Envelope[testItem]{Items: []testItem{}, Total: intPtr(1)},
		},
		{
			name:     "envelope_null_data",
			raw:      `{"data":null}`,
			expected: Envelope[testItem]{Items: []testItem{}},
		},
		{
			name:     "leading_whitespace",
			raw:      "  \n\t[{\"id\":\"1\"}]",
			expected: Envelope[testItem]{Items: []testItem{{ID: "1"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize[testItem](json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("Normalize mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	_, err := Normalize[testItem](json.RawMessage(`"just a string"`))
	if err == nil {
		t.Fatal("Expected error for scalar body")
	}
}

func TestNormalize_PreservesItemOrder(t *testing.T) {
	raw := json.RawMessage(`[{"id":"z"},{"id":"a"},{"id":"m"}]`)
	got, err := Normalize[testItem](raw)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := []string{"z", "a", "m"}
	for i, item := range got.Items {
		if item.ID != want[i] {
			t.Errorf("Item %d = %s, want %s (ordering is server-authoritative)", i, item.ID, want[i])
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"null",
		`[{"id":"1"},{"id":"2"}]`,
		`{"data":[{"id":"1"}],"total":3,"page":1,"limit":20}`,
		`{"total":7}`,
	}

	for _, raw := range inputs {
		first, err := Normalize[testItem](json.RawMessage(raw))
		if err != nil {
			t.Fatalf("Normalize(%q) failed: %v", raw, err)
		}

		reencoded, err := json.Marshal(first)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}

		second, err := Normalize[testItem](reencoded)
		if err != nil {
			t.Fatalf("Normalize round trip failed: %v", err)
		}

		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("Normalize(%q) not idempotent (-first +second):\n%s", raw, diff)
		}
	}
}

func TestDecodeCursorPage(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected CursorPage[testItem]
	}{
		{
			name:     "with_next_cursor",
			raw:      `{"data":[{"id":"1"},{"id":"2"}],"nextCursor":"c1"}`,
			expected: CursorPage[testItem]{Items: []testItem{{ID: "1"}, {ID: "2"}}, NextCursor: strPtr("c1")},
		},
		{
			name:     "final_page",
			raw:      `{"data":[{"id":"3"}],"nextCursor":null}`,
			expected: CursorPage[testItem]{Items: []testItem{{ID: "3"}}},
		},
		{
			name:     "empty_body",
			raw:      "",
			expected: CursorPage[testItem]{Items: []testItem{}},
		},
		{
			name:     "missing_data",
			raw:      `{"nextCursor":"c9"}`,
			expected: CursorPage[testItem]{Items: []testItem{}, NextCursor: strPtr("c9")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCursorPage[testItem](json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("DecodeCursorPage failed: %v", err)
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("DecodeCursorPage mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeCursorPage_RejectsArray(t *testing.T) {
	_, err := DecodeCursorPage[testItem](json.RawMessage(`[{"id":"1"}]`))
	if err != ErrMalformedPage {
		t.Errorf("Expected ErrMalformedPage for bare array in cursor mode, got %v", err)
	}
}

func TestCursorPage_HasMore(t *testing.T) {
	tests := []struct {
		name     string
		cursor   *string
		expected bool
	}{
		{"nil_cursor", nil, false},
		{"empty_cursor", strPtr(""), false},
		{"present_cursor", strPtr("c1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CursorPage[testItem]{NextCursor: tt.cursor}
			if got := p.HasMore(); got != tt.expected {
				t.Errorf("HasMore() = %v, want %v", got, tt.expected)
			}
		})
	}
}
