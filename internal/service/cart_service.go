package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"shtora-api/internal/domain"
	"shtora-api/internal/repository"

	"go.uber.org/zap"
)

var (
	// ErrCartUnavailable means the persisted cart could not be restored
	// and no session copy exists: the cart state is unknown, not empty,
	// and cart-dependent logic must not proceed.
	ErrCartUnavailable = errors.New("cart state is unavailable")
)

// CartService defines cart operations over a durable, per-cart-id store.
type CartService interface {
	Get(ctx context.Context, cartID string) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, cartID, productID string, quantity int, size string) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID, size string) (*domain.Cart, error)
	Clear(ctx context.Context, cartID string) (*domain.Cart, error)
}

type cartService struct {
	repo   repository.CartRepository
	logger *zap.Logger

	// mu serializes load-mutate-save cycles so no two mutations can
	// interleave mid-update.
	mu sync.Mutex
	// sessionOnly holds carts whose last persist failed. They keep
	// working in memory until storage recovers.
	sessionOnly map[string][]domain.CartItem
}

// NewCartService creates a CartService backed by the given repository.
func NewCartService(repo repository.CartRepository, logger *zap.Logger) CartService {
	return &cartService{
		repo:        repo,
		logger:      logger,
		sessionOnly: make(map[string][]domain.CartItem),
	}
}

// hydrate restores the cart for the id. A cart that was never saved is
// confirmed empty; a storage failure without a session copy leaves the
// state unknown and is reported as ErrCartUnavailable.
func (s *cartService) hydrate(ctx context.Context, cartID string) (*domain.Cart, error) {
	items, err := s.repo.Load(ctx, cartID)
	switch {
	case err == nil:
		// A session-only copy outlives a readable snapshot when writes
		// fail while reads still succeed (storage quota exhaustion). The
		// copy exists only because a save failed after the snapshot was
		// written, so it is newer; it is cleared on the next successful
		// save, never here.
		if items, ok := s.sessionOnly[cartID]; ok {
			return &domain.Cart{Items: items, Status: domain.CartStatusLoaded}, nil
		}
		cart := &domain.Cart{Items: items, Status: domain.CartStatusLoaded}
		if len(items) == 0 {
			cart.Items = []domain.CartItem{}
			cart.Status = domain.CartStatusEmpty
		}
		return cart, nil

	case errors.Is(err, repository.ErrCartNotFound):
		if items, ok := s.sessionOnly[cartID]; ok {
			return &domain.Cart{Items: items, Status: domain.CartStatusLoaded}, nil
		}
		return domain.NewCart(), nil

	default:
		if items, ok := s.sessionOnly[cartID]; ok {
			return &domain.Cart{Items: items, Status: domain.CartStatusLoaded}, nil
		}
		s.logger.Error("Failed to hydrate cart", zap.String("cart_id", cartID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
}

// persist saves the cart. A write failure degrades to a session-only
// cart: logged, kept in memory, never surfaced to the user.
func (s *cartService) persist(ctx context.Context, cartID string, cart *domain.Cart) {
	if err := s.repo.Save(ctx, cartID, cart.Items); err != nil {
		s.logger.Warn("Cart persistence degraded to session-only",
			zap.String("cart_id", cartID),
			zap.Error(err),
		)
		s.sessionOnly[cartID] = cart.Items
		return
	}
	delete(s.sessionOnly, cartID)
}

func (s *cartService) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrate(ctx, cartID)
}

func (s *cartService) AddItem(ctx context.Context, cartID string, item domain.CartItem) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.hydrate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.AddItem(item)
	s.persist(ctx, cartID, cart)
	return cart, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int, size string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.hydrate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.UpdateQuantity(productID, quantity, size)
	s.persist(ctx, cartID, cart)
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID, size string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.hydrate(ctx, cartID)
	if err != nil {
		return nil, err
	}
	cart.RemoveItem(productID, size)
	s.persist(ctx, cartID, cart)
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, cartID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessionOnly, cartID)
	if err := s.repo.Delete(ctx, cartID); err != nil {
		s.logger.Warn("Failed to delete persisted cart", zap.String("cart_id", cartID), zap.Error(err))
	}
	return domain.NewCart(), nil
}
