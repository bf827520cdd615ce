package cache

import "time"

// Named TTL classes. Callers pick a class rather than an ad hoc duration.
const (
	// TTLShort covers volatile listings such as orders.
	TTLShort = 30 * time.Second
	// TTLMedium covers product counts and low-stock lists.
	TTLMedium = 2 * time.Minute
	// TTLLong covers near-static data such as categories.
	TTLLong = 10 * time.Minute
	// TTLStats covers aggregated statistics.
	TTLStats = 60 * time.Second
)
