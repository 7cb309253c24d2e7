package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
)

var (
	ErrItemNotFound        = errors.New("market item not found")
	ErrEmptyOrder          = errors.New("order has no items")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

type MarketService struct {
	marketRepo *repository.MarketRepository
	userRepo   *repository.UserRepository
}

func NewMarketService(marketRepo *repository.MarketRepository, userRepo *repository.UserRepository) *MarketService {
	return &MarketService{
		marketRepo: marketRepo,
		userRepo:   userRepo,
	}
}

func (s *MarketService) ListItems(ctx context.Context, category string) ([]models.MarketItem, error) {
	return s.marketRepo.ListItems(ctx, category)
}

func (s *MarketService) GetItem(ctx context.Context, id string) (*models.MarketItem, error) {
	item, err := s.marketRepo.GetItem(ctx, id)
	if err != nil {
		if airtable.IsNotFound(err) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

// OrderLine is one requested item in an order.
type OrderLine struct {
	ItemID   string
	Quantity int
}

// PlaceOrder prices the requested items, checks the buyer's balance, creates
// the order and its line records, then debits the wallet. The debit comes
// last so a failed order never takes points; the order row it leaves behind
// stays in status New and is visible to fulfillment.
func (s *MarketService) PlaceOrder(ctx context.Context, userID string, lines []OrderLine) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if airtable.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	total := 0
	items := make([]*models.MarketItem, len(lines))
	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		item, err := s.GetItem(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		items[i] = item
		total += item.Price * line.Quantity
	}

	if user.WalletBalance < total {
		return nil, ErrInsufficientBalance
	}

	order := &models.Order{
		OrderFields: models.OrderFields{
			User:       []string{userID},
			Items:      []string{},
			Total:      total,
			Status:     models.OrderStatusNew,
			PickupCode: newPickupCode(),
		},
	}
	if err := s.marketRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	for i, line := range lines {
		orderItem := &models.OrderItem{
			OrderItemFields: models.OrderItemFields{
				Order:      []string{order.ID},
				MarketItem: []string{items[i].ID},
				Quantity:   line.Quantity,
				UnitPrice:  items[i].Price,
			},
		}
		if err := s.marketRepo.CreateOrderItem(ctx, orderItem); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, orderItem.ID)
	}
	if err := s.marketRepo.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	user.WalletBalance -= total
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *MarketService) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.marketRepo.ListOrdersForUser(ctx, userID)
}

func newPickupCode() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
