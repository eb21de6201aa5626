package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shtora-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCartNotFound means no persisted cart exists under the key yet.
	ErrCartNotFound = errors.New("cart not found")
)

// Carts live under a single namespaced key per cart id and hold only the
// serialized item list, never derived totals or transient state.
const cartKeyPrefix = "shtora:cart"

// CartRepository defines the interface for durable cart storage.
type CartRepository interface {
	Load(ctx context.Context, cartID string) ([]domain.CartItem, error)
	Save(ctx context.Context, cartID string, items []domain.CartItem) error
	Delete(ctx context.Context, cartID string) error
}

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed CartRepository. Carts expire
// after ttl of inactivity; zero disables expiry.
func NewCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	return &cartRepository{client: client, ttl: ttl}
}

func cartKey(cartID string) string {
	return fmt.Sprintf("%s:%s", cartKeyPrefix, cartID)
}

// Load reads and deserializes the item list stored under the cart id.
func (r *cartRepository) Load(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	data, err := r.client.Get(ctx, cartKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return items, nil
}

// Save serializes the item list and writes it under the cart id,
// refreshing the expiry.
func (r *cartRepository) Save(ctx context.Context, cartID string, items []domain.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cartID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

// Delete drops the persisted cart. Deleting an absent cart is a no-op.
func (r *cartRepository) Delete(ctx context.Context, cartID string) error {
	if err := r.client.Del(ctx, cartKey(cartID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
