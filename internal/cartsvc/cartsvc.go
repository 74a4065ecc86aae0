// Package cartsvc implements the Data Gateway's cart operations. Every
// mutation runs inside one transaction with the cart row locked first, so
// concurrent requests for the same user serialize instead of racing.
package cartsvc

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/timel-e/core/internal/apperr"
	"github.com/timel-e/core/internal/database"
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Item is a cart line as accepted by create/replace/add operations.
type Item struct {
	ProductID int32
	Quantity  int32
}

// View is the enriched, ordering-normalized cart returned by every read.
type View struct {
	CartID    int32
	UpdatedAt time.Time
	Items     []database.CartItemView
}

func sortItems(items []database.CartItemView) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].AddToCartOrder != items[j].AddToCartOrder {
			return items[i].AddToCartOrder < items[j].AddToCartOrder
		}
		return items[i].ProductID < items[j].ProductID
	})
}

// Get returns the enriched cart for user. A user without a cart gets an
// empty representation stamped with the current instant; no row is created.
func (s *Service) Get(ctx context.Context, userID int64) (View, error) {
	q := database.New(s.db)
	cart, err := q.GetCartByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return View{UpdatedAt: time.Now().UTC()}, nil
	}
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "looking up cart failed", err)
	}
	items, err := q.ListCartItems(ctx, cart.CartID)
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "listing cart items failed", err)
	}
	sortItems(items)
	return View{CartID: cart.CartID, UpdatedAt: cart.UpdatedAt, Items: items}, nil
}

func (s *Service) withTx(ctx context.Context, fn func(q *database.Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "beginning transaction failed", err)
	}
	defer tx.Rollback()

	if err := fn(database.New(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Internal, "committing transaction failed", err)
	}
	return nil
}

func validateProducts(ctx context.Context, q *database.Queries, items []Item) error {
	ids := make([]int32, len(items))
	for i, it := range items {
		if it.Quantity <= 0 {
			return apperr.New(apperr.InvalidInput, "item quantity must be positive")
		}
		ids[i] = it.ProductID
	}
	found, err := q.ListProductsByIDs(ctx, ids)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "validating products failed", err)
	}
	seen := make(map[int32]bool, len(found))
	for _, p := range found {
		seen[p.ProductID] = true
	}
	for _, it := range items {
		if !seen[it.ProductID] {
			return apperr.New(apperr.InvalidInput, "unknown product id")
		}
	}
	return nil
}

// Create makes a new cart for user, 409 if one already exists.
func (s *Service) Create(ctx context.Context, userID int64, items []Item) (View, error) {
	var result View
	err := s.withTx(ctx, func(q *database.Queries) error {
		if len(items) > 0 {
			if err := validateProducts(ctx, q, items); err != nil {
				return err
			}
		}
		if _, err := q.LockCartByUserID(ctx, userID); err == nil {
			return apperr.New(apperr.Conflict, "cart already exists")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return apperr.Wrap(apperr.Internal, "checking for existing cart failed", err)
		}

		now := time.Now().UTC()
		cart, err := q.CreateCart(ctx, userID, now)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "creating cart failed", err)
		}
		if err := insertItems(ctx, q, cart.CartID, items); err != nil {
			return err
		}
		v, err := s.readLocked(ctx, q, cart.CartID, now)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// Replace performs a full upsert of the cart's items, creating the cart if absent.
func (s *Service) Replace(ctx context.Context, userID int64, items []Item) (View, error) {
	var result View
	err := s.withTx(ctx, func(q *database.Queries) error {
		if len(items) > 0 {
			if err := validateProducts(ctx, q, items); err != nil {
				return err
			}
		}
		cart, err := q.LockCartByUserID(ctx, userID)
		now := time.Now().UTC()
		if errors.Is(err, sql.ErrNoRows) {
			cart, err = q.CreateCart(ctx, userID, now)
			if err != nil {
				return apperr.Wrap(apperr.Internal, "creating cart failed", err)
			}
		} else if err != nil {
			return apperr.Wrap(apperr.Internal, "locking cart failed", err)
		}

		if err := q.ClearCartItems(ctx, cart.CartID); err != nil {
			return apperr.Wrap(apperr.Internal, "clearing cart items failed", err)
		}
		if err := insertItems(ctx, q, cart.CartID, items); err != nil {
			return err
		}
		if err := q.TouchCart(ctx, cart.CartID, now); err != nil {
			return apperr.Wrap(apperr.Internal, "touching cart failed", err)
		}
		v, err := s.readLocked(ctx, q, cart.CartID, now)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func insertItems(ctx context.Context, q *database.Queries, cartID int32, items []Item) error {
	for i, it := range items {
		if err := q.InsertCartItem(ctx, database.InsertCartItemParams{
			CartID: cartID, ProductID: it.ProductID, Quantity: it.Quantity, AddToCartOrder: int32(i + 1),
		}); err != nil {
			return apperr.Wrap(apperr.Internal, "inserting cart item failed", err)
		}
	}
	return nil
}

// AddItem increments an existing row's quantity or inserts a new one.
func (s *Service) AddItem(ctx context.Context, userID int64, item Item) (View, error) {
	if item.Quantity <= 0 {
		return View{}, apperr.New(apperr.InvalidInput, "item quantity must be positive")
	}
	var result View
	err := s.withTx(ctx, func(q *database.Queries) error {
		if err := validateProducts(ctx, q, []Item{item}); err != nil {
			return err
		}
		now := time.Now().UTC()
		cart, err := q.LockCartByUserID(ctx, userID)
		if errors.Is(err, sql.ErrNoRows) {
			cart, err = q.CreateCart(ctx, userID, now)
			if err != nil {
				return apperr.Wrap(apperr.Internal, "creating cart failed", err)
			}
		} else if err != nil {
			return apperr.Wrap(apperr.Internal, "locking cart failed", err)
		}

		existing, err := q.GetCartItem(ctx, cart.CartID, item.ProductID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			order, err := q.NextCartItemOrder(ctx, cart.CartID)
			if err != nil {
				return apperr.Wrap(apperr.Internal, "computing item order failed", err)
			}
			if err := q.InsertCartItem(ctx, database.InsertCartItemParams{
				CartID: cart.CartID, ProductID: item.ProductID, Quantity: item.Quantity, AddToCartOrder: order,
			}); err != nil {
				return apperr.Wrap(apperr.Internal, "inserting cart item failed", err)
			}
		case err != nil:
			return apperr.Wrap(apperr.Internal, "looking up cart item failed", err)
		default:
			if err := q.SetCartItemQuantity(ctx, cart.CartID, item.ProductID, existing.Quantity+item.Quantity); err != nil {
				return apperr.Wrap(apperr.Internal, "updating cart item failed", err)
			}
		}

		if err := q.TouchCart(ctx, cart.CartID, now); err != nil {
			return apperr.Wrap(apperr.Internal, "touching cart failed", err)
		}
		v, err := s.readLocked(ctx, q, cart.CartID, now)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// SetItemQuantity sets an item's quantity; qty <= 0 removes it.
func (s *Service) SetItemQuantity(ctx context.Context, userID int64, productID, quantity int32) (View, error) {
	var result View
	err := s.withTx(ctx, func(q *database.Queries) error {
		now := time.Now().UTC()
		cart, err := q.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.NotFound, "cart not found")
			}
			return apperr.Wrap(apperr.Internal, "locking cart failed", err)
		}

		if quantity <= 0 {
			if err := q.RemoveCartItem(ctx, cart.CartID, productID); err != nil {
				return apperr.Wrap(apperr.Internal, "removing cart item failed", err)
			}
		} else {
			if err := validateProducts(ctx, q, []Item{{ProductID: productID, Quantity: quantity}}); err != nil {
				return err
			}
			if err := q.SetCartItemQuantity(ctx, cart.CartID, productID, quantity); err != nil {
				return apperr.Wrap(apperr.Internal, "updating cart item failed", err)
			}
		}

		if err := q.TouchCart(ctx, cart.CartID, now); err != nil {
			return apperr.Wrap(apperr.Internal, "touching cart failed", err)
		}
		v, err := s.readLocked(ctx, q, cart.CartID, now)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func (s *Service) RemoveItem(ctx context.Context, userID int64, productID int32) (View, error) {
	return s.SetItemQuantity(ctx, userID, productID, 0)
}

func (s *Service) ClearCart(ctx context.Context, userID int64) (View, error) {
	var result View
	err := s.withTx(ctx, func(q *database.Queries) error {
		now := time.Now().UTC()
		cart, err := q.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.NotFound, "cart not found")
			}
			return apperr.Wrap(apperr.Internal, "locking cart failed", err)
		}
		if err := q.ClearCartItems(ctx, cart.CartID); err != nil {
			return apperr.Wrap(apperr.Internal, "clearing cart items failed", err)
		}
		if err := q.TouchCart(ctx, cart.CartID, now); err != nil {
			return apperr.Wrap(apperr.Internal, "touching cart failed", err)
		}
		v, err := s.readLocked(ctx, q, cart.CartID, now)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func (s *Service) DeleteCart(ctx context.Context, userID int64) error {
	return s.withTx(ctx, func(q *database.Queries) error {
		cart, err := q.LockCartByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.NotFound, "cart not found")
			}
			return apperr.Wrap(apperr.Internal, "locking cart failed", err)
		}
		if err := q.DeleteCart(ctx, cart.CartID); err != nil {
			return apperr.Wrap(apperr.Internal, "deleting cart failed", err)
		}
		return nil
	})
}

func (s *Service) readLocked(ctx context.Context, q *database.Queries, cartID int32, updatedAt time.Time) (View, error) {
	items, err := q.ListCartItems(ctx, cartID)
	if err != nil {
		return View{}, apperr.Wrap(apperr.Internal, "listing cart items failed", err)
	}
	sortItems(items)
	return View{CartID: cartID, UpdatedAt: updatedAt, Items: items}, nil
}
