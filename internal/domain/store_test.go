package domain_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// helper для каталога из эталонного сценария.
func makeCatalog(t *testing.T) (*domain.Store, domain.Product, domain.Product) {
	t.Helper()
	mac := makeProduct(t, "MacBook Air M2", 145000, 100)
	earbuds := makeProduct(t, "Bose QuietComfort Earbuds", 25000, 500)
	return domain.NewStore([]domain.Product{mac, earbuds}), mac, earbuds
}

func TestStoreTotalQuantity(t *testing.T) {
	store, mac, _ := makeCatalog(t)

	if got := store.TotalQuantity(); got != 600 {
		t.Fatalf("expected 600, got %d", got)
	}

	// Неактивные товары тоже входят в сумму.
	mac.Deactivate()
	if got := store.TotalQuantity(); got != 600 {
		t.Fatalf("inactive products must still count, got %d", got)
	}
}

func TestStoreActiveProducts_PreservesOrder(t *testing.T) {
	pixel := makeProduct(t, "Google Pixel 7", 50000, 250)
	store, _, earbuds := makeCatalog(t)
	store.Add(pixel)

	earbuds.Deactivate()

	active := store.ActiveProducts()
	if len(active) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(active))
	}
	if active[0].Name() != "MacBook Air M2" || active[1].Name() != "Google Pixel 7" {
		t.Fatalf("catalog order must be preserved, got %q, %q", active[0].Name(), active[1].Name())
	}
}

func TestStoreActiveProducts_ExcludesDepleted(t *testing.T) {
	store, mac, _ := makeCatalog(t)

	mac.SetQuantity(0)
	for _, product := range store.ActiveProducts() {
		if product.Name() == "MacBook Air M2" {
			t.Fatal("depleted product must not be listed as active")
		}
	}
}

func TestStoreAddRemove(t *testing.T) {
	store, mac, _ := makeCatalog(t)

	if err := store.Remove(mac); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := store.Remove(mac); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if got := store.TotalQuantity(); got != 500 {
		t.Fatalf("expected 500 after removal, got %d", got)
	}

	store.Add(mac)
	products := store.Products()
	if products[len(products)-1] != mac {
		t.Fatal("added product must go to the end of the catalog")
	}
}

func TestStoreFindByName(t *testing.T) {
	store, mac, _ := makeCatalog(t)

	found, err := store.FindByName("MacBook Air M2")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found != mac {
		t.Fatal("find must return the catalog product itself")
	}

	if _, err := store.FindByName("missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestStoreOrder_EndToEnd(t *testing.T) {
	store, mac, earbuds := makeCatalog(t)

	total, err := store.Order([]domain.OrderLine{
		{Product: mac, Qty: 1},
		{Product: earbuds, Qty: 2},
	})
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}

	// 1450.00 + 2×250.00 = 1950.00.
	if total != 195000 {
		t.Fatalf("expected 195000, got %d", total)
	}
	if mac.Quantity() != 99 {
		t.Fatalf("expected mac quantity 99, got %d", mac.Quantity())
	}
	if earbuds.Quantity() != 498 {
		t.Fatalf("expected earbuds quantity 498, got %d", earbuds.Quantity())
	}
}

func TestStoreOrder_PartialFailure(t *testing.T) {
	store, mac, earbuds := makeCatalog(t)

	// Вторая позиция заведомо превышает сток: заказ прерывается,
	// списание по первой позиции остаётся применённым — отката нет.
	_, err := store.Order([]domain.OrderLine{
		{Product: mac, Qty: 1},
		{Product: earbuds, Qty: 501},
	})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if mac.Quantity() != 99 {
		t.Fatalf("first line deduction must stay applied, got %d", mac.Quantity())
	}
	if earbuds.Quantity() != 500 {
		t.Fatalf("failed line must not change stock, got %d", earbuds.Quantity())
	}
}

func TestStoreOrder_StopsAfterFailure(t *testing.T) {
	store, mac, earbuds := makeCatalog(t)
	mac.Deactivate()

	_, err := store.Order([]domain.OrderLine{
		{Product: mac, Qty: 1},
		{Product: earbuds, Qty: 2},
	})
	if !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
	// Ошибка на первой позиции — последующие не обрабатываются.
	if earbuds.Quantity() != 500 {
		t.Fatalf("lines after the failure must not be processed, got %d", earbuds.Quantity())
	}
}
