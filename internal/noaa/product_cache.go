package noaa

import "sync"

// ProductCache remembers which products each station publishes and which
// ones it has rejected. Entries never expire; station capabilities do not
// change within a process lifetime. Safe for concurrent use.
type ProductCache struct {
	mu          sync.Mutex
	known       map[string]map[string]bool
	unsupported map[string]map[string]bool
}

// NewProductCache creates an empty cache
func NewProductCache() *ProductCache {
	return &ProductCache{
		known:       make(map[string]map[string]bool),
		unsupported: make(map[string]map[string]bool),
	}
}

// Known returns the memoized product set for a station
func (c *ProductCache) Known(stationID string) (map[string]bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	products, ok := c.known[stationID]
	return products, ok
}

// SetKnown stores the product set for a station
func (c *ProductCache) SetKnown(stationID string, products map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[stationID] = products
}

// MarkUnsupported records that a station rejected a product
func (c *ProductCache) MarkUnsupported(stationID, product string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.unsupported[stationID]
	if !ok {
		set = make(map[string]bool)
		c.unsupported[stationID] = set
	}
	set[NormalizeProductName(product)] = true
}

// ShouldAttempt reports whether fetching product from a station is worthwhile:
// it has not been rejected, and either the known set lists it or nothing is
// known about the station.
func (c *ProductCache) ShouldAttempt(stationID, product string) bool {
	product = NormalizeProductName(product)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsupported[stationID][product] {
		return false
	}
	known := c.known[stationID]
	return len(known) == 0 || known[product]
}
