package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-api/internal/domain/cart"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// --- Mock implementations ---

type mockCartRepo struct {
	carts map[string]*cart.Cart
}

func newCartRepo(carts ...*cart.Cart) *mockCartRepo {
	m := &mockCartRepo{carts: make(map[string]*cart.Cart)}
	for _, c := range carts {
		m.carts[c.UserID] = c
	}
	return m
}

func (m *mockCartRepo) Get(_ context.Context, userID string) (*cart.Cart, error) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return c, nil
}

func (m *mockCartRepo) Save(_ context.Context, c *cart.Cart) error {
	m.carts[c.UserID] = c
	return nil
}

func (m *mockCartRepo) Delete(_ context.Context, userID string) error {
	delete(m.carts, userID)
	return nil
}

type mockProductRepo struct {
	byID map[string]*product.Product
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }

// mockCheckoutStore mimics the transactional store: conditional decrements
// against a shared stock map, all-or-nothing per call.
type mockCheckoutStore struct {
	mu          sync.Mutex
	stock       map[string]int
	carts       *mockCartRepo
	placed      []*Order
	placeErr    error
	clearedUser string
}

func (m *mockCheckoutStore) Place(ctx context.Context, o *Order, decrements []StockDecrement, clearCartUserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.placeErr != nil {
		return m.placeErr
	}

	for _, d := range decrements {
		if m.stock[d.ProductID] < d.Quantity {
			return &InsufficientStockError{
				ProductID: d.ProductID,
				Stock:     m.stock[d.ProductID],
				Requested: d.Quantity,
			}
		}
	}
	for _, d := range decrements {
		m.stock[d.ProductID] -= d.Quantity
	}
	m.placed = append(m.placed, o)
	if clearCartUserID != "" {
		m.clearedUser = clearCartUserID
		if m.carts != nil {
			_ = m.carts.Delete(ctx, clearCartUserID)
		}
	}
	return nil
}

type mockOrderRepo struct {
	orders []Order
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type mockNotifier struct {
	mu     sync.Mutex
	events []*Order
}

func (m *mockNotifier) OrderPlaced(_ context.Context, o *Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, o)
}

// --- Helpers ---

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestProduct(id, title string, price decimal.Decimal, stock int) product.Product {
	return product.Product{ID: id, Title: title, Price: price, SalePrice: price, Stock: stock}
}

type fixture struct {
	carts    *mockCartRepo
	products *mockProductRepo
	store    *mockCheckoutStore
	orders   *mockOrderRepo
	notifier *mockNotifier
	svc      *Service
}

func newFixture(carts *mockCartRepo, products *mockProductRepo) *fixture {
	stock := make(map[string]int, len(products.byID))
	for id, p := range products.byID {
		stock[id] = p.Stock
	}
	f := &fixture{
		carts:    carts,
		products: products,
		store:    &mockCheckoutStore{stock: stock, carts: carts},
		orders:   &mockOrderRepo{},
		notifier: &mockNotifier{},
	}
	f.svc = NewService(f.carts, f.products, f.store, f.orders, f.notifier)
	return f
}

// --- Tests ---

func TestPlaceFromCart_AbsentCart(t *testing.T) {
	f := newFixture(newCartRepo(), newProductRepo())

	_, err := f.svc.PlaceFromCart(context.Background(), "u1")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.store.placed)
	assert.Empty(t, f.notifier.events)
}

func TestPlaceFromCart_EmptyCart(t *testing.T) {
	f := newFixture(newCartRepo(&cart.Cart{UserID: "u1"}), newProductRepo())

	_, err := f.svc.PlaceFromCart(context.Background(), "u1")
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.store.placed)
}

func TestPlaceFromCart_TotalsAndCartDeleted(t *testing.T) {
	c := &cart.Cart{UserID: "u1", Lines: []cart.Line{
		{ProductID: "pa", Quantity: 2},
		{ProductID: "pb", Quantity: 1},
	}}
	f := newFixture(newCartRepo(c), newProductRepo(
		newTestProduct("pa", "Widget", d("10.00"), 10),
		newTestProduct("pb", "Gadget", d("20.00"), 10),
	))

	o, err := f.svc.PlaceFromCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, d("40.00").Equal(o.Total))
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "u1", o.UserID)
	require.Len(t, o.Items, 2)
	assert.True(t, d("10.00").Equal(o.Items[0].UnitPrice))

	// Stock decremented and cart gone.
	assert.Equal(t, 8, f.store.stock["pa"])
	assert.Equal(t, 9, f.store.stock["pb"])
	assert.Equal(t, "u1", f.store.clearedUser)
	_, err = f.carts.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, cart.ErrNotFound)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, o.ID, f.notifier.events[0].ID)
}

func TestPlaceFromCart_UsesSalePriceWhenDiscounted(t *testing.T) {
	p := product.Product{
		ID: "pa", Title: "Widget",
		Price:              d("100.00"),
		DiscountPercentage: d("20"),
		SalePrice:          d("80"),
		Stock:              5,
	}
	c := &cart.Cart{UserID: "u1", Lines: []cart.Line{{ProductID: "pa", Quantity: 2}}}
	f := newFixture(newCartRepo(c), newProductRepo(p))

	o, err := f.svc.PlaceFromCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, d("160.00").Equal(o.Total))
}

func TestPlaceFromCart_InsufficientStockAbortsWhole(t *testing.T) {
	c := &cart.Cart{UserID: "u1", Lines: []cart.Line{
		{ProductID: "pa", Quantity: 1},
		{ProductID: "pb", Quantity: 5},
	}}
	f := newFixture(newCartRepo(c), newProductRepo(
		newTestProduct("pa", "Widget", d("10.00"), 10),
		newTestProduct("pb", "Gadget", d("20.00"), 3),
	))

	_, err := f.svc.PlaceFromCart(context.Background(), "u1")

	var isErr *InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "pb", isErr.ProductID)
	assert.Equal(t, 3, isErr.Stock)
	assert.Equal(t, 5, isErr.Requested)

	// Nothing written: no order, no decrements, cart intact.
	assert.Empty(t, f.store.placed)
	assert.Equal(t, 10, f.store.stock["pa"])
	_, err = f.carts.Get(context.Background(), "u1")
	assert.NoError(t, err)
}

func TestPlaceFromCart_VanishedProduct(t *testing.T) {
	c := &cart.Cart{UserID: "u1", Lines: []cart.Line{{ProductID: "gone", Quantity: 1}}}
	f := newFixture(newCartRepo(c), newProductRepo())

	_, err := f.svc.PlaceFromCart(context.Background(), "u1")

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "gone", pnfErr.ProductID)
}

func TestPlaceFromCart_StoreErrorNoNotification(t *testing.T) {
	c := &cart.Cart{UserID: "u1", Lines: []cart.Line{{ProductID: "pa", Quantity: 1}}}
	f := newFixture(newCartRepo(c), newProductRepo(newTestProduct("pa", "Widget", d("10.00"), 5)))
	f.store.placeErr = errors.New("db down")

	_, err := f.svc.PlaceFromCart(context.Background(), "u1")
	require.Error(t, err)
	assert.Empty(t, f.notifier.events)
}

func TestPlaceDirect_DecrementsStock(t *testing.T) {
	p := product.Product{
		ID: "pa", Title: "Widget",
		Price:              d("100.00"),
		DiscountPercentage: d("10"),
		SalePrice:          d("90"),
		Stock:              5,
	}
	f := newFixture(newCartRepo(), newProductRepo(p))

	o, err := f.svc.PlaceDirect(context.Background(), "u1", "pa", 3)
	require.NoError(t, err)

	assert.True(t, d("270.00").Equal(o.Total), "total should be 3 x sale price")
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 2, f.store.stock["pa"])
	assert.Empty(t, f.store.clearedUser, "direct orders must not touch the cart")
	require.Len(t, f.notifier.events, 1)
}

func TestPlaceDirect_InvalidQuantity(t *testing.T) {
	f := newFixture(newCartRepo(), newProductRepo(newTestProduct("pa", "Widget", d("10.00"), 5)))

	_, err := f.svc.PlaceDirect(context.Background(), "u1", "pa", 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPlaceDirect_OutOfStock(t *testing.T) {
	f := newFixture(newCartRepo(), newProductRepo(newTestProduct("pa", "Widget", d("10.00"), 0)))

	_, err := f.svc.PlaceDirect(context.Background(), "u1", "pa", 1)

	var oosErr *OutOfStockError
	require.ErrorAs(t, err, &oosErr)
	assert.Equal(t, "pa", oosErr.ProductID)
}

func TestPlaceDirect_InsufficientStock(t *testing.T) {
	f := newFixture(newCartRepo(), newProductRepo(newTestProduct("pa", "Widget", d("10.00"), 2)))

	_, err := f.svc.PlaceDirect(context.Background(), "u1", "pa", 3)

	var isErr *InsufficientStockError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, 2, isErr.Stock)
	assert.Equal(t, 3, isErr.Requested)
	assert.Empty(t, f.store.placed)
}

func TestPlaceDirect_ProductNotFound(t *testing.T) {
	f := newFixture(newCartRepo(), newProductRepo())

	_, err := f.svc.PlaceDirect(context.Background(), "u1", "missing", 1)

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
}

// Concurrent direct orders must never oversell: the conditional decrement in
// the store bounds the sum of decrements by the initial stock.
func TestPlaceDirect_ConcurrentNeverOversells(t *testing.T) {
	const initialStock = 10
	f := newFixture(newCartRepo(), newProductRepo(newTestProduct("pa", "Widget", d("10.00"), initialStock)))

	const attempts = 50
	var wg sync.WaitGroup
	wg.Add(attempts)
	for range attempts {
		go func() {
			defer wg.Done()
			_, _ = f.svc.PlaceDirect(context.Background(), "u1", "pa", 1)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, f.store.stock["pa"], 0)
	assert.LessOrEqual(t, len(f.store.placed), initialStock)
}

func TestHistory(t *testing.T) {
	f := newFixture(newCartRepo(), newProductRepo())
	f.orders.orders = []Order{
		{ID: "o1", UserID: "u1"},
		{ID: "o2", UserID: "u2"},
		{ID: "o3", UserID: "u1"},
	}

	orders, err := f.svc.History(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
