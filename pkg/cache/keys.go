package cache

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const keyRoot = "shop"

// Resources used in cache keys.
const (
	ResourceOrders   = "orders"
	ResourceProducts = "products"
	ResourceStats    = "stats"
	ResourceLowStock = "products:low-stock"
	ResourceSettings = "settings"
	// ResourceReplay holds recorded responses for retried writes. Never invalidated.
	ResourceReplay = "replay"
)

// Key builds shop:<shopID>:<resource>[:<extra>...]. Empty extras are skipped.
func Key(shopID, resource string, extra ...string) string {
	parts := make([]string, 0, 3+len(extra))
	parts = append(parts, keyRoot, strings.TrimSpace(shopID), resource)
	for _, part := range extra {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ":")
}

// PaginatedKey folds page, limit, and the filter set into the key so distinct
// filter combinations never collide. Filters are serialized with sorted keys.
func PaginatedKey(shopID, resource string, page, limit int, filters map[string]string) string {
	return Key(shopID, resource, strconv.Itoa(page), strconv.Itoa(limit), canonicalFilters(filters))
}

// ShopPattern matches every key under resource for the shop, including the bare key.
func ShopPattern(shopID, resource string) string {
	return Key(shopID, resource) + "*"
}

func canonicalFilters(filters map[string]string) string {
	names := make([]string, 0, len(filters))
	for name, value := range filters {
		if strings.TrimSpace(value) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		k, _ := json.Marshal(name)
		v, _ := json.Marshal(filters[name])
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String()
}
