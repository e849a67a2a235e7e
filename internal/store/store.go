// Package store is the load/save boundary for draw state and category
// definitions. The draw itself never depends on a Store succeeding.
package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/xtding233/bolillero/internal/draw"
)

// ErrNotFound is returned when no draw state exists for a key.
var ErrNotFound = errors.New("draw state not found")

// CategoryDefinition supplies defaults for a category's draw state.
type CategoryDefinition struct {
	Key       string             `yaml:"key" json:"key"`
	ZoneCount int                `yaml:"zone_count" json:"zone_count"`
	PoolSizes [draw.NumPools]int `yaml:"pool_sizes" json:"pool_sizes"` // expected entrants per pool
}

// Store persists draw state per category key.
type Store interface {
	LoadDrawState(ctx context.Context, key string) (draw.Config, error)
	SaveDrawState(ctx context.Context, cfg draw.Config) error
	LoadCategoryDefinitions(ctx context.Context) ([]CategoryDefinition, error)
	Close() error
}

// DefaultCategories is the built-in list used when nothing is persisted:
// birth-year categories 2010-2018, six zones, six entrants per pool.
func DefaultCategories() []CategoryDefinition {
	defs := make([]CategoryDefinition, 0, 9)
	for year := 2010; year <= 2018; year++ {
		defs = append(defs, CategoryDefinition{
			Key:       strconv.Itoa(year),
			ZoneCount: 6,
			PoolSizes: [draw.NumPools]int{6, 6, 6, 6},
		})
	}
	return defs
}

// FindCategory returns the definition for key.
func FindCategory(defs []CategoryDefinition, key string) (CategoryDefinition, bool) {
	for _, d := range defs {
		if d.Key == key {
			return d, true
		}
	}
	return CategoryDefinition{}, false
}
