package cache

import "testing"

func TestKey(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"bare", Key("s1", ResourceOrders), "shop:s1:orders"},
		{"extra", Key("s1", ResourceStats, "orders"), "shop:s1:stats:orders"},
		{"skips empty", Key("s1", ResourceProducts, "", "count"), "shop:s1:products:count"},
		{"pattern", ShopPattern("s1", ResourceOrders), "shop:s1:orders*"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %q got %q", tc.name, tc.want, tc.got)
		}
	}
}

func TestPaginatedKeyIsCanonical(t *testing.T) {
	a := PaginatedKey("s1", ResourceOrders, 2, 20, map[string]string{"status": "completed", "from": "2024-01-01"})
	b := PaginatedKey("s1", ResourceOrders, 2, 20, map[string]string{"from": "2024-01-01", "status": "completed"})
	if a != b {
		t.Fatalf("filter order should not matter: %q vs %q", a, b)
	}
	want := `shop:s1:orders:2:20:{"from":"2024-01-01","status":"completed"}`
	if a != want {
		t.Fatalf("expected %q got %q", want, a)
	}

	other := PaginatedKey("s1", ResourceOrders, 2, 20, map[string]string{"status": "void"})
	if other == a {
		t.Fatal("distinct filters must not collide")
	}
	if got := PaginatedKey("s1", ResourceOrders, 1, 20, map[string]string{"status": ""}); got != "shop:s1:orders:1:20:{}" {
		t.Fatalf("empty filters should fold to {}, got %q", got)
	}
}
