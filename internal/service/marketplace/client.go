package marketplace

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"golang.org/x/time/rate"

	"PricePulse/internal/domain/models"
	"PricePulse/internal/domain/repository"
)

// MockClient simulates one marketplace's search API. Results are a pure
// function of (platform, query) so repeated searches and demo runs see a
// stable market. A per-client rate limiter mimics upstream quotas and
// keeps the cache warmer honest.
type MockClient struct {
	platform string
	limiter  *rate.Limiter
}

// NewMockClient creates a search client for one platform.
func NewMockClient(platform string) *MockClient {
	return &MockClient{
		platform: platform,
		limiter:  rate.NewLimiter(rate.Limit(20), 5),
	}
}

// NewClients creates one client per configured platform.
func NewClients(platforms []string) []repository.SearchClient {
	clients := make([]repository.SearchClient, 0, len(platforms))
	for _, p := range platforms {
		clients = append(clients, NewMockClient(p))
	}
	return clients
}

func (c *MockClient) Platform() string { return c.platform }

// Search returns up to limit listings for the query.
func (c *MockClient) Search(ctx context.Context, query string, limit int) ([]models.Listing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s search: %w", c.platform, err)
	}
	if limit <= 0 {
		limit = 20
	}

	r := rand.New(rand.NewSource(listingSeed(c.platform, query)))
	base := 50 + r.Float64()*450

	listings := make([]models.Listing, 0, limit)
	for i := 0; i < limit; i++ {
		listings = append(listings, models.Listing{
			ID:       fmt.Sprintf("%s-%08x-%d", c.platform, listingSeed(c.platform, query)&0xffffffff, i),
			Platform: c.platform,
			Title:    fmt.Sprintf("%s (%s offer %d)", query, c.platform, i+1),
			Price:    round2(base * (0.8 + r.Float64()*0.4)),
			Sold:     r.Int63n(5000),
		})
	}
	return listings, nil
}

func listingSeed(platform, query string) int64 {
	h := fnv.New64a()
	h.Write([]byte(platform))
	h.Write([]byte("|"))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(query))))
	return int64(h.Sum64() & 0x7fffffffffffffff)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
