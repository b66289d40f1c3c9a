package items

import (
	"context"

	"github.com/dmitrijs2005/consentvault/internal/client/models"
)

// Repository stores sealed values by key.
type Repository interface {
	// Get returns the item stored under key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) (*models.SealedItem, error)

	// Put inserts the item or replaces the one with the same key.
	Put(ctx context.Context, item *models.SealedItem) error

	// Delete removes the item. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
}
