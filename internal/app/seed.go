package app

import (
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// seedCatalog собирает стартовый каталог витрины с акциями.
func seedCatalog() (*domain.Store, error) {
	macbook, err := domain.NewProduct("MacBook Air M2", 145000, 100)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	macbook.SetPromotion(domain.NewSecondHalfPrice("second one at half price"))

	earbuds, err := domain.NewProduct("Bose QuietComfort Earbuds", 25000, 500)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	earbuds.SetPromotion(domain.NewThirdOneFree("third one free"))

	pixel, err := domain.NewProduct("Google Pixel 7", 50000, 250)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	license, err := domain.NewNonStockedProduct("Windows License", 12500)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	discount, err := domain.NewPercentDiscount("30% off", 30)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	license.SetPromotion(discount)

	shipping, err := domain.NewLimitedProduct("Shipping", 1000, 250, 1)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	return domain.NewStore([]domain.Product{macbook, earbuds, pixel, license, shipping}), nil
}
