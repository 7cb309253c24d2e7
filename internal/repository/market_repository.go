package repository

import (
	"context"
	"encoding/json"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
)

type MarketRepository struct {
	base *airtable.Client
}

func NewMarketRepository(base *airtable.Client) *MarketRepository {
	return &MarketRepository{base: base}
}

func (r *MarketRepository) GetItem(ctx context.Context, id string) (*models.MarketItem, error) {
	rec, err := r.base.GetRecord(ctx, TableMarketItems, id)
	if err != nil {
		return nil, err
	}
	return decodeMarketItem(rec)
}

func (r *MarketRepository) ListItems(ctx context.Context, category string) ([]models.MarketItem, error) {
	opts := airtable.ListOptions{}
	if category != "" {
		opts.FilterByFormula = airtable.FieldEquals("Category", category)
	}
	recs, err := r.base.ListRecords(ctx, TableMarketItems, opts)
	if err != nil {
		return nil, err
	}
	items := make([]models.MarketItem, 0, len(recs))
	for i := range recs {
		item, err := decodeMarketItem(&recs[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

func (r *MarketRepository) CreateItem(ctx context.Context, item *models.MarketItem) error {
	rec, err := r.base.CreateRecord(ctx, TableMarketItems, &item.MarketItemFields)
	if err != nil {
		return err
	}
	item.ID = rec.ID
	return nil
}

func (r *MarketRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	rec, err := r.base.CreateRecord(ctx, TableOrders, &order.OrderFields)
	if err != nil {
		return err
	}
	order.ID = rec.ID
	return nil
}

func (r *MarketRepository) UpdateOrder(ctx context.Context, order *models.Order) error {
	if _, err := r.base.UpdateRecord(ctx, TableOrders, order.ID, &order.OrderFields); err != nil {
		return err
	}
	return nil
}

func (r *MarketRepository) CreateOrderItem(ctx context.Context, item *models.OrderItem) error {
	rec, err := r.base.CreateRecord(ctx, TableOrderItems, &item.OrderItemFields)
	if err != nil {
		return err
	}
	item.ID = rec.ID
	return nil
}

func (r *MarketRepository) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	recs, err := r.base.ListRecords(ctx, TableOrders, airtable.ListOptions{
		FilterByFormula: airtable.ListContains("User", userID),
	})
	if err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(recs))
	for i := range recs {
		o := models.Order{ID: recs[i].ID}
		if err := json.Unmarshal(recs[i].Fields, &o.OrderFields); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func decodeMarketItem(rec *airtable.Record) (*models.MarketItem, error) {
	item := &models.MarketItem{ID: rec.ID}
	if err := json.Unmarshal(rec.Fields, &item.MarketItemFields); err != nil {
		return nil, err
	}
	return item, nil
}
