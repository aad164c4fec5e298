package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"PricePulse/internal/domain/models"
	xhttp "PricePulse/pkg/http"
)

var catalogNames = []string{
	"Wireless Earbuds", "USB-C Hub", "Mechanical Keyboard", "Gaming Mouse",
	"Laptop Stand", "Phone Case", "Power Bank", "Bluetooth Speaker",
	"Smart Watch", "Desk Lamp", "Webcam", "Portable SSD",
	"Monitor Arm", "HDMI Cable", "Ring Light", "Fitness Tracker",
}

// MockCatalog is a deterministic in-memory product source. Product IDs
// are name-based UUIDs so the same (platform, ordinal) pair yields the
// same identity across restarts, keeping walk state reusable.
type MockCatalog struct {
	platforms   []string
	perPlatform int

	once     sync.Once
	byPlat   map[string][]models.ProductSnapshot
	byPlatID map[string]*models.ProductSnapshot
}

// NewMockCatalog creates a catalog covering the given platforms.
func NewMockCatalog(platforms []string, perPlatform int) *MockCatalog {
	if perPlatform <= 0 {
		perPlatform = 60
	}
	return &MockCatalog{platforms: platforms, perPlatform: perPlatform}
}

// Products returns up to limit products for one platform, or an
// interleaved mix for platform "all".
func (c *MockCatalog) Products(_ context.Context, platform string, limit int) ([]models.ProductSnapshot, error) {
	c.build()
	if limit <= 0 {
		limit = c.perPlatform
	}

	if platform != "" && platform != "all" {
		list, ok := c.byPlat[platform]
		if !ok {
			return nil, xhttp.NotFoundErrorf("unknown platform %q", platform)
		}
		return capped(list, limit), nil
	}

	mixed := make([]models.ProductSnapshot, 0, limit)
	for i := 0; i < c.perPlatform && len(mixed) < limit; i++ {
		for _, p := range c.platforms {
			if len(mixed) >= limit {
				break
			}
			mixed = append(mixed, c.byPlat[p][i])
		}
	}
	return mixed, nil
}

// Lookup finds a single product by platform and id.
func (c *MockCatalog) Lookup(_ context.Context, platform, id string) (*models.ProductSnapshot, error) {
	c.build()
	p, ok := c.byPlatID[platform+":"+id]
	if !ok {
		return nil, xhttp.NotFoundErrorf("product %s/%s not found", platform, id)
	}
	cp := *p
	return &cp, nil
}

func (c *MockCatalog) build() {
	c.once.Do(func() {
		c.byPlat = make(map[string][]models.ProductSnapshot, len(c.platforms))
		c.byPlatID = make(map[string]*models.ProductSnapshot)

		for _, platform := range c.platforms {
			list := make([]models.ProductSnapshot, 0, c.perPlatform)
			r := rand.New(rand.NewSource(catalogSeed(platform)))
			for i := 0; i < c.perPlatform; i++ {
				id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", platform, i))).String()
				price := round2(20 + r.Float64()*480)
				original := round2(price * (1 + 0.1 + r.Float64()*0.4))

				p := models.ProductSnapshot{
					ID:            id,
					Platform:      platform,
					Name:          fmt.Sprintf("%s %c%d", catalogNames[i%len(catalogNames)], 'A'+rune(i/len(catalogNames)), i+1),
					Price:         price,
					OriginalPrice: &original,
					Currency:      "USD",
				}
				if r.Float64() < 0.5 {
					competitor := round2(price * (0.9 + r.Float64()*0.25))
					p.CompetitorAvg = &competitor
				}
				if r.Float64() < 0.3 {
					demand := 0.2 + r.Float64()*0.6
					p.DemandFactor = &demand
				}
				list = append(list, p)
			}
			c.byPlat[platform] = list
			for i := range list {
				c.byPlatID[platform+":"+list[i].ID] = &list[i]
			}
		}
	})
}

func capped(list []models.ProductSnapshot, limit int) []models.ProductSnapshot {
	if len(list) <= limit {
		return list
	}
	return list[:limit]
}

func catalogSeed(platform string) int64 {
	var s int64
	for _, r := range platform {
		s = s*131 + int64(r)
	}
	return s
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
