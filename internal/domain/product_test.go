package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// helper для создания обычного товара в тестах.
func makeProduct(t *testing.T, name string, priceMinor int64, qty int32) domain.Product {
	t.Helper()
	product, err := domain.NewProduct(name, priceMinor, qty)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	return product
}

func TestNewProduct_Valid(t *testing.T) {
	product := makeProduct(t, "MacBook Air M2", 145000, 100)

	if !product.IsActive() {
		t.Fatal("new product with stock must be active")
	}
	if product.Quantity() != 100 {
		t.Fatalf("expected quantity 100, got %d", product.Quantity())
	}
	if product.PriceMinor() != 145000 {
		t.Fatalf("expected price 145000, got %d", product.PriceMinor())
	}
}

func TestNewProduct_ZeroQuantityInactive(t *testing.T) {
	product := makeProduct(t, "sold out", 100, 0)
	// Валидный товар с нулевым стоком создаётся, но активным не считается.
	if product.IsActive() {
		t.Fatal("product with zero quantity must not be active")
	}
}

func TestNewProduct_InvalidArguments(t *testing.T) {
	cases := []struct {
		name     string
		product  string
		price    int64
		quantity int32
		want     error
	}{
		{name: "empty name", product: "", price: 100, quantity: 1, want: domain.ErrNameRequired},
		{name: "negative price", product: "p", price: -1, quantity: 1, want: domain.ErrPriceNegative},
		{name: "negative quantity", product: "p", price: 100, quantity: -1, want: domain.ErrQuantityNegative},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			product, err := domain.NewProduct(tc.product, tc.price, tc.quantity)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if product != nil {
				t.Fatal("partially built product must not be returned")
			}
			if !domain.IsInvalidArgument(err) {
				t.Fatalf("error %v must classify as invalid argument", err)
			}
		})
	}
}

func TestSetQuantity_AutoDeactivation(t *testing.T) {
	product := makeProduct(t, "p", 100, 10)

	product.SetQuantity(0)
	if product.IsActive() {
		t.Fatal("set_quantity(0) must deactivate the product")
	}

	// Пополнение стока само по себе активность не возвращает.
	product.SetQuantity(5)
	if product.IsActive() {
		t.Fatal("restock without explicit activate must keep product inactive")
	}

	product.Activate()
	if !product.IsActive() {
		t.Fatal("activate with stock must make product active")
	}
}

func TestBuy_DecrementsStock(t *testing.T) {
	product := makeProduct(t, "Bose QuietComfort Earbuds", 25000, 500)

	total, err := product.Buy(50)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if total != 1250000 {
		t.Fatalf("expected 1250000, got %d", total)
	}
	if product.Quantity() != 450 {
		t.Fatalf("expected quantity 450, got %d", product.Quantity())
	}
}

func TestBuy_AppliesPromotion(t *testing.T) {
	product := makeProduct(t, "earbuds", 25000, 500)
	product.SetPromotion(domain.NewSecondHalfPrice("Second Half price!"))

	total, err := product.Buy(3)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if total != 62500 {
		t.Fatalf("expected 62500, got %d", total)
	}
}

func TestBuy_InsufficientStock(t *testing.T) {
	product := makeProduct(t, "p", 100, 3)

	if _, err := product.Buy(4); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if product.Quantity() != 3 {
		t.Fatalf("failed buy must not change stock, got %d", product.Quantity())
	}
}

func TestBuy_InactiveProduct(t *testing.T) {
	product := makeProduct(t, "p", 100, 3)
	product.Deactivate()

	if _, err := product.Buy(1); !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
	if product.Quantity() != 3 {
		t.Fatalf("failed buy must not change stock, got %d", product.Quantity())
	}
}

func TestBuy_InvalidQty(t *testing.T) {
	product := makeProduct(t, "p", 100, 3)

	for _, qty := range []int32{0, -1} {
		if _, err := product.Buy(qty); !errors.Is(err, domain.ErrQtyInvalid) {
			t.Fatalf("qty %d: expected ErrQtyInvalid, got %v", qty, err)
		}
	}
}

func TestBuy_LastUnitsDeactivate(t *testing.T) {
	product := makeProduct(t, "p", 100, 2)

	if _, err := product.Buy(2); err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if product.IsActive() {
		t.Fatal("product must auto-deactivate when stock reaches zero")
	}
	if _, err := product.Buy(1); !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive after depletion, got %v", err)
	}
}

func TestNonStockedProduct(t *testing.T) {
	product, err := domain.NewNonStockedProduct("Windows License", 12500)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if product.Quantity() != 0 {
		t.Fatalf("non-stocked quantity must be 0, got %d", product.Quantity())
	}
	if !product.IsActive() {
		t.Fatal("non-stocked product must be active despite zero stock")
	}

	// Покупка не требует и не списывает сток.
	total, err := product.Buy(10)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if total != 125000 {
		t.Fatalf("expected 125000, got %d", total)
	}
	if product.Quantity() != 0 {
		t.Fatalf("non-stocked buy must not change quantity, got %d", product.Quantity())
	}

	// Остаток закреплён на нуле.
	product.SetQuantity(50)
	if product.Quantity() != 0 {
		t.Fatalf("non-stocked quantity must stay 0, got %d", product.Quantity())
	}

	product.Deactivate()
	if _, err := product.Buy(1); !errors.Is(err, domain.ErrProductInactive) {
		t.Fatalf("expected ErrProductInactive, got %v", err)
	}
}

func TestNonStockedProduct_WithPromotion(t *testing.T) {
	product, err := domain.NewNonStockedProduct("Windows License", 12500)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	thirtyPercent, err := domain.NewPercentDiscount("30% off!", 30)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	product.SetPromotion(thirtyPercent)

	total, err := product.Buy(2)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if total != 17500 {
		t.Fatalf("expected 17500, got %d", total)
	}
}

func TestLimitedProduct(t *testing.T) {
	product, err := domain.NewLimitedProduct("Shipping", 1000, 250, 1)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	if _, err := product.Buy(2); !errors.Is(err, domain.ErrPurchaseLimitExceeded) {
		t.Fatalf("expected ErrPurchaseLimitExceeded, got %v", err)
	}
	if product.Quantity() != 250 {
		t.Fatalf("rejected buy must not change stock, got %d", product.Quantity())
	}

	total, err := product.Buy(1)
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}
	if total != 1000 {
		t.Fatalf("expected 1000, got %d", total)
	}
	if product.Quantity() != 249 {
		t.Fatalf("expected quantity 249, got %d", product.Quantity())
	}
}

func TestNewLimitedProduct_InvalidMaximum(t *testing.T) {
	if _, err := domain.NewLimitedProduct("Shipping", 1000, 250, 0); !errors.Is(err, domain.ErrMaximumInvalid) {
		t.Fatalf("expected ErrMaximumInvalid, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	product := makeProduct(t, "MacBook Air M2", 145000, 100)
	got := product.Describe()
	want := "MacBook Air M2, Price: 1450.00, Quantity: 100, Promotion: no promotion"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	product.SetPromotion(domain.NewSecondHalfPrice("Second Half price!"))
	if !strings.Contains(product.Describe(), "Promotion: Second Half price!") {
		t.Fatalf("describe must include promotion name, got %q", product.Describe())
	}

	nonStocked, err := domain.NewNonStockedProduct("Windows License", 12500)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if !strings.Contains(nonStocked.Describe(), "Quantity: Unlimited") {
		t.Fatalf("non-stocked describe must render unlimited quantity, got %q", nonStocked.Describe())
	}

	limited, err := domain.NewLimitedProduct("Shipping", 1000, 250, 1)
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}
	if !strings.Contains(limited.Describe(), "Limited to 1 per order") {
		t.Fatalf("limited describe must render the maximum, got %q", limited.Describe())
	}
}
