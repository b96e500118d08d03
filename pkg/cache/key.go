package cache

import (
	"sort"
	"strconv"
	"strings"
)

// Category scopes a key to one query variant of an entity.
type Category string

const (
	// CategoryList scopes offset-mode collection queries.
	CategoryList Category = "list"

	// CategoryDetail scopes by-ID queries.
	CategoryDetail Category = "detail"

	// CategorySearch scopes offset-mode search queries.
	CategorySearch Category = "search"

	// CategoryCursor scopes cursor-mode queries.
	CategoryCursor Category = "cursor"
)

// keyNamespace prefixes every serialized key so shared backends can be
// swept without touching unrelated data.
const keyNamespace = "adminapi"

// Filters is the filter mapping of a list query. Empty values count as
// absent and are stripped before key derivation, so {page: 0} and {}
// derive the same key.
type Filters map[string]string

// With returns a copy with k set, unless v is empty.
func (f Filters) With(k, v string) Filters {
	out := make(Filters, len(f)+1)
	for key, val := range f {
		out[key] = val
	}
	if v != "" {
		out[k] = v
	}
	return out
}

// WithInt returns a copy with k set, unless v is zero. Zero-valued optional
// numeric filters are treated as absent.
func (f Filters) WithInt(k string, v int) Filters {
	if v == 0 {
		return f.With(k, "")
	}
	return f.With(k, strconv.Itoa(v))
}

// canonical returns the non-empty filters as sorted k=v segments. Sorting
// makes structurally equal filter maps derive colliding keys regardless of
// how the caller assembled them.
func (f Filters) canonical() []string {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	segs := make([]string, 0, len(keys))
	for _, k := range keys {
		segs = append(segs, k+"="+f[k])
	}
	return segs
}

// Key identifies one cached query result. Keys are hierarchical:
// [entity, category, ...segments], supporting prefix invalidation.
type Key struct {
	Entity   string
	Category Category
	Segments []string
}

// ListKey derives the key for an offset-mode list query.
func ListKey(entity string, filters Filters) Key {
	return Key{Entity: entity, Category: CategoryList, Segments: filters.canonical()}
}

// DetailKey derives the key for a by-ID query.
func DetailKey(entity, id string) Key {
	return Key{Entity: entity, Category: CategoryDetail, Segments: []string{id}}
}

// SearchKey derives the key for an offset-mode search query.
func SearchKey(entity string, filters Filters) Key {
	return Key{Entity: entity, Category: CategorySearch, Segments: filters.canonical()}
}

// CursorKey derives the key for a cursor-mode query.
func CursorKey(entity string, filters Filters) Key {
	return Key{Entity: entity, Category: CategoryCursor, Segments: filters.canonical()}
}

// parts returns the ordered key parts without the namespace.
func (k Key) parts() []string {
	parts := make([]string, 0, 2+len(k.Segments))
	parts = append(parts, k.Entity, string(k.Category))
	return append(parts, k.Segments...)
}

// String generates the deterministic serialized key.
// Format: adminapi:entity:category:seg1:seg2
//
// Example:
//
//	adminapi:product:list:limit=20:storeId=a
func (k Key) String() string {
	return keyNamespace + ":" + strings.Join(k.parts(), ":")
}

// Prefix is a leading portion of a key's parts, used to scope invalidation.
// Invalidating a prefix affects every key it is a prefix of.
type Prefix []string

// EntityPrefix matches every key of an entity, all categories.
func EntityPrefix(entity string) Prefix {
	return Prefix{entity}
}

// CategoryPrefix matches every key of an entity within one category,
// regardless of trailing filter segments.
func CategoryPrefix(entity string, category Category) Prefix {
	return Prefix{entity, string(category)}
}

// KeyPrefix matches exactly the given key and nothing broader.
func KeyPrefix(k Key) Prefix {
	return Prefix(k.parts())
}

// String serializes the prefix the same way keys serialize, so shared
// backends can pattern-match on it.
func (p Prefix) String() string {
	return keyNamespace + ":" + strings.Join(p, ":")
}

// Matches reports whether the key falls under the prefix.
func (k Key) Matches(p Prefix) bool {
	parts := k.parts()
	if len(p) > len(parts) {
		return false
	}
	for i, seg := range p {
		if parts[i] != seg {
			return false
		}
	}
	return true
}
