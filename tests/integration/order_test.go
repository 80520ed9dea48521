//go:build integration

package integration

import (
	"net/http"
	"regexp"
	"testing"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// The admin identity seeded by seed-db owns user "admin"; all cart and order
// calls act on that user.

func TestCartCheckoutFlow(t *testing.T) {
	// Add two products to the cart.
	resp := do(t, http.MethodPut, "/api/cart", adminToken, cartLineRequest{
		UserID: "admin", ProductID: "p-keyboard", Quantity: 2,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add keyboard: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPut, "/api/cart", adminToken, cartLineRequest{
		UserID: "admin", ProductID: "p-chef-knife", Quantity: 1,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add knife: expected 200, got %d", resp.StatusCode)
	}

	// Cart view is joined with product data.
	resp = do(t, http.MethodGet, "/api/cart/admin", adminToken, nil)
	cart := decodeJSON[cartResponse](t, resp)
	resp.Body.Close()
	if cart.CartCount != 3 {
		t.Fatalf("cart count: got %d, want 3", cart.CartCount)
	}

	// Checkout.
	resp = do(t, http.MethodPost, "/api/order/cart/admin", adminToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}

	order := decodeJSON[orderResponse](t, resp)
	if !uuidPattern.MatchString(order.ID) {
		t.Errorf("order ID: got %q, want UUID", order.ID)
	}
	// 2 x 89.00 + 1 x 55.00
	if order.TotalPrice != 233 {
		t.Errorf("total: got %v, want 233", order.TotalPrice)
	}
	if order.Status != "pending" {
		t.Errorf("status: got %q, want pending", order.Status)
	}

	// Cart is cleared by checkout.
	resp2 := do(t, http.MethodGet, "/api/cart/admin", adminToken, nil)
	cart = decodeJSON[cartResponse](t, resp2)
	resp2.Body.Close()
	if cart.CartCount != 0 {
		t.Errorf("cart count after checkout: got %d, want 0", cart.CartCount)
	}

	// Stock was decremented.
	resp3 := doGet(t, "/api/products/p-keyboard")
	p := decodeJSON[productResponse](t, resp3)
	resp3.Body.Close()
	if p.Stock != 23 {
		t.Errorf("keyboard stock: got %d, want 23", p.Stock)
	}

	// Order appears in history.
	resp4 := do(t, http.MethodGet, "/api/order/admin", adminToken, nil)
	history := decodeJSON[[]orderResponse](t, resp4)
	resp4.Body.Close()
	if len(history) == 0 || history[0].ID != order.ID {
		t.Errorf("history: latest order not found")
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/order/cart/admin", adminToken, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDirectOrder_InsufficientStock(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/order/direct", adminToken, directOrderRequest{
		UserID: "admin", ProductID: "p-sicp", Quantity: 100,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	body := decodeJSON[errorResponse](t, resp)
	if body.Reason != "insufficient_stock" {
		t.Errorf("reason: got %q, want insufficient_stock", body.Reason)
	}

	// Stock untouched.
	resp2 := doGet(t, "/api/products/p-sicp")
	p := decodeJSON[productResponse](t, resp2)
	resp2.Body.Close()
	if p.Stock != 12 {
		t.Errorf("stock: got %d, want 12", p.Stock)
	}
}

func TestDirectOrder_SalePriceApplied(t *testing.T) {
	resp := do(t, http.MethodPost, "/api/order/direct", adminToken, directOrderRequest{
		UserID: "admin", ProductID: "p-espresso", Quantity: 2,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	// 10% off 34.50, floored to 31; 2 x 31 = 62.
	order := decodeJSON[orderResponse](t, resp)
	if order.TotalPrice != 62 {
		t.Errorf("total: got %v, want 62", order.TotalPrice)
	}
}

func TestOrderHistory_NoAuth(t *testing.T) {
	resp := do(t, http.MethodGet, "/api/order/admin", "", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
