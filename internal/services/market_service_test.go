package services

import (
	"context"
	"testing"

	"github.com/cuesoftinc/cuelabs-backend/internal/airtable/airtabletest"
	"github.com/cuesoftinc/cuelabs-backend/internal/models"
	"github.com/cuesoftinc/cuelabs-backend/internal/repository"
	"github.com/stretchr/testify/assert"
)

func setupMarketTest(t *testing.T) (*airtabletest.Server, *MarketService) {
	srv := airtabletest.NewServer()
	t.Cleanup(srv.Close)

	base := srv.Client()
	return srv, NewMarketService(
		repository.NewMarketRepository(base),
		repository.NewUserRepository(base),
	)
}

func seedMarketItem(srv *airtabletest.Server, name string, price int) string {
	return srv.Seed(repository.TableMarketItems, map[string]any{
		"Name":     name,
		"Price":    price,
		"Category": "Swag",
		"In Stock": true,
	})
}

func TestMarketService_PlaceOrder(t *testing.T) {
	srv, svc := setupMarketTest(t)
	ctx := context.Background()

	userID := seedUser(srv, "alice", 200)
	stickerID := seedMarketItem(srv, "Sticker pack", 30)
	shirtID := seedMarketItem(srv, "T-shirt", 50)

	order, err := svc.PlaceOrder(ctx, userID, []OrderLine{
		{ItemID: stickerID, Quantity: 2},
		{ItemID: shirtID, Quantity: 1},
	})
	assert.NoError(t, err)
	assert.Equal(t, 110, order.Total)
	assert.Equal(t, models.OrderStatusNew, order.Status)
	assert.Len(t, order.PickupCode, 8)
	assert.Len(t, order.Items, 2)

	orderFields := srv.Fields(repository.TableOrders, order.ID)
	assert.Equal(t, []any{userID}, orderFields["User"])
	assert.Len(t, orderFields["Items"], 2)

	lineIDs := srv.RecordIDs(repository.TableOrderItems)
	assert.Len(t, lineIDs, 2)
	first := srv.Fields(repository.TableOrderItems, lineIDs[0])
	assert.Equal(t, []any{stickerID}, first["Market Item"])
	assert.Equal(t, float64(2), first["Quantity"])
	assert.Equal(t, float64(30), first["Unit Price"])

	assert.Equal(t, float64(90),
		srv.Fields(repository.TableUsers, userID)["Wallet Balance"])
}

func TestMarketService_PlaceOrderInsufficientBalance(t *testing.T) {
	srv, svc := setupMarketTest(t)
	ctx := context.Background()

	userID := seedUser(srv, "alice", 20)
	shirtID := seedMarketItem(srv, "T-shirt", 50)

	_, err := svc.PlaceOrder(ctx, userID, []OrderLine{{ItemID: shirtID, Quantity: 1}})
	assert.Equal(t, ErrInsufficientBalance, err)

	// Nothing was written and the wallet is untouched.
	assert.Empty(t, srv.RecordIDs(repository.TableOrders))
	assert.Empty(t, srv.RecordIDs(repository.TableOrderItems))
	assert.Equal(t, float64(20),
		srv.Fields(repository.TableUsers, userID)["Wallet Balance"])
}

func TestMarketService_PlaceOrderValidation(t *testing.T) {
	srv, svc := setupMarketTest(t)
	ctx := context.Background()

	userID := seedUser(srv, "alice", 200)
	shirtID := seedMarketItem(srv, "T-shirt", 50)

	_, err := svc.PlaceOrder(ctx, userID, nil)
	assert.Equal(t, ErrEmptyOrder, err)

	_, err = svc.PlaceOrder(ctx, userID, []OrderLine{{ItemID: shirtID, Quantity: 0}})
	assert.Equal(t, ErrInvalidQuantity, err)

	_, err = svc.PlaceOrder(ctx, userID, []OrderLine{{ItemID: "recMISSING0000000", Quantity: 1}})
	assert.Equal(t, ErrItemNotFound, err)

	_, err = svc.PlaceOrder(ctx, "recMISSING0000000", []OrderLine{{ItemID: shirtID, Quantity: 1}})
	assert.Equal(t, ErrUserNotFound, err)

	assert.Empty(t, srv.RecordIDs(repository.TableOrders))
}

func TestMarketService_ListItemsByCategory(t *testing.T) {
	srv, svc := setupMarketTest(t)
	ctx := context.Background()

	seedMarketItem(srv, "Sticker pack", 30)
	srv.Seed(repository.TableMarketItems, map[string]any{
		"Name": "Cloud credits", "Price": 500, "Category": "Infra", "In Stock": true,
	})

	all, err := svc.ListItems(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	swag, err := svc.ListItems(ctx, "Swag")
	assert.NoError(t, err)
	assert.Len(t, swag, 1)
	assert.Equal(t, "Sticker pack", swag[0].Name)
}

func TestMarketService_ListOrdersForUser(t *testing.T) {
	srv, svc := setupMarketTest(t)
	ctx := context.Background()

	aliceID := seedUser(srv, "alice", 500)
	bobID := seedUser(srv, "bob", 500)
	shirtID := seedMarketItem(srv, "T-shirt", 50)

	_, err := svc.PlaceOrder(ctx, aliceID, []OrderLine{{ItemID: shirtID, Quantity: 1}})
	assert.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, bobID, []OrderLine{{ItemID: shirtID, Quantity: 2}})
	assert.NoError(t, err)

	aliceOrders, err := svc.ListOrders(ctx, aliceID)
	assert.NoError(t, err)
	assert.Len(t, aliceOrders, 1)
	assert.Equal(t, 50, aliceOrders[0].Total)
}
