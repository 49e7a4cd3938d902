package domain

import (
	"fmt"
	"sync"
)

// Product описывает позицию каталога: цену, сток, флаг активности и
// опциональную акцию. Purchase — единственная мутирующая операция,
// приносящая выручку; все инварианты стока сходятся в ней.
type Product interface {
	// Name возвращает имя товара. Имя неизменно после создания.
	Name() string
	// PriceMinor возвращает цену за единицу в минимальных денежных единицах.
	PriceMinor() int64
	// Quantity возвращает текущий остаток на складе.
	Quantity() int32
	// SetQuantity задаёт остаток; значение <= 0 деактивирует товар.
	SetQuantity(qty int32)
	// IsActive сообщает, доступен ли товар к покупке.
	IsActive() bool
	// Activate включает флаг активности.
	Activate()
	// Deactivate выключает флаг активности.
	Deactivate()
	// Promotion возвращает прикреплённую акцию или nil.
	Promotion() Promotion
	// SetPromotion прикрепляет акцию; nil снимает её.
	SetPromotion(promo Promotion)
	// Buy покупает qty единиц и возвращает итоговую стоимость покупки.
	Buy(qty int32) (int64, error)
	// Describe возвращает строковое представление для отображения.
	Describe() string
}

// baseProduct несёт общие поля и поведение всех вариантов товара.
// Мьютекс защищает сток, флаг активности и ссылку на акцию, чтобы
// товар оставался корректным и при конкурентных вызовах.
type baseProduct struct {
	mu         sync.Mutex
	name       string
	priceMinor int64
	quantity   int32
	active     bool
	promotion  Promotion
}

func (p *baseProduct) init(name string, priceMinor int64, quantity int32) error {
	if name == "" {
		return ErrNameRequired
	}
	if priceMinor < 0 {
		return ErrPriceNegative
	}
	if quantity < 0 {
		return ErrQuantityNegative
	}
	p.name = name
	p.priceMinor = priceMinor
	p.quantity = quantity
	p.active = true
	return nil
}

func (p *baseProduct) Name() string { return p.name }

func (p *baseProduct) PriceMinor() int64 { return p.priceMinor }

func (p *baseProduct) Quantity() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quantity
}

// SetQuantity задаёт остаток. Побочный эффект: остаток <= 0 автоматически
// деактивирует товар.
func (p *baseProduct) SetQuantity(qty int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setQuantityLocked(qty)
}

func (p *baseProduct) setQuantityLocked(qty int32) {
	p.quantity = qty
	if p.quantity <= 0 {
		p.active = false
	}
}

// IsActive истинно только при включённом флаге И положительном остатке:
// товар с нулевым стоком не считается активным, даже если его явно не
// деактивировали.
func (p *baseProduct) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isActiveLocked()
}

func (p *baseProduct) isActiveLocked() bool {
	return p.active && p.quantity > 0
}

func (p *baseProduct) Activate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = true
}

func (p *baseProduct) Deactivate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
}

func (p *baseProduct) Promotion() Promotion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.promotion
}

func (p *baseProduct) SetPromotion(promo Promotion) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promotion = promo
}

// priceForLocked делегирует расчёт прикреплённой акции; без акции — полная
// цена за qty единиц.
func (p *baseProduct) priceForLocked(qty int32) int64 {
	if p.promotion != nil {
		return p.promotion.Apply(p.priceMinor, qty)
	}
	return p.priceMinor * int64(qty)
}

func (p *baseProduct) promotionNameLocked() string {
	if p.promotion == nil {
		return "no promotion"
	}
	return p.promotion.Name()
}

// Buy списывает qty единиц со склада и возвращает стоимость покупки с учётом
// акции. Ошибки: ErrQtyInvalid, ErrProductInactive, ErrInsufficientStock.
// Если остаток обнуляется, товар автоматически деактивируется.
func (p *baseProduct) Buy(qty int32) (int64, error) {
	if qty <= 0 {
		return 0, ErrQtyInvalid
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isActiveLocked() {
		return 0, ErrProductInactive
	}
	if qty > p.quantity {
		return 0, ErrInsufficientStock
	}

	total := p.priceForLocked(qty)
	p.setQuantityLocked(p.quantity - qty)
	return total, nil
}

func (p *baseProduct) Describe() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s, Price: %s, Quantity: %d, Promotion: %s",
		p.name, FormatMinor(p.priceMinor), p.quantity, p.promotionNameLocked())
}

// standardProduct — обычный товар с полным учётом стока.
type standardProduct struct {
	baseProduct
}

// NewProduct создаёт обычный товар. Возвращает ошибку конструирования при
// пустом имени, отрицательной цене или отрицательном количестве; частично
// построенный товар наружу не отдаётся.
func NewProduct(name string, priceMinor int64, quantity int32) (Product, error) {
	p := &standardProduct{}
	if err := p.init(name, priceMinor, quantity); err != nil {
		return nil, err
	}
	return p, nil
}

// nonStockedProduct — товар без физического стока (лицензии, цифровые
// позиции). Остаток всегда 0, доступность не зависит от склада.
type nonStockedProduct struct {
	baseProduct
}

// NewNonStockedProduct создаёт товар с неограниченной доступностью.
func NewNonStockedProduct(name string, priceMinor int64) (Product, error) {
	p := &nonStockedProduct{}
	if err := p.init(name, priceMinor, 0); err != nil {
		return nil, err
	}
	return p, nil
}

// SetQuantity игнорирует новое значение: остаток non-stocked товара
// закреплён на нуле и не влияет на активность.
func (p *nonStockedProduct) SetQuantity(int32) {}

// IsActive для non-stocked товара определяется только флагом: нулевой
// остаток здесь не признак недоступности.
func (p *nonStockedProduct) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Buy не требует и не списывает сток: проверка остатка пропускается,
// наивное переиспользование базовой покупки всегда падало бы с
// ErrInsufficientStock.
func (p *nonStockedProduct) Buy(qty int32) (int64, error) {
	if qty <= 0 {
		return 0, ErrQtyInvalid
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return 0, ErrProductInactive
	}
	return p.priceForLocked(qty), nil
}

func (p *nonStockedProduct) Describe() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s, Price: %s, Quantity: Unlimited, Promotion: %s",
		p.name, FormatMinor(p.priceMinor), p.promotionNameLocked())
}

// limitedProduct ограничивает количество единиц в одной покупке.
type limitedProduct struct {
	baseProduct
	maximum int32
}

// NewLimitedProduct создаёт товар с лимитом maximum единиц на покупку.
func NewLimitedProduct(name string, priceMinor int64, quantity, maximum int32) (Product, error) {
	if maximum <= 0 {
		return nil, ErrMaximumInvalid
	}
	p := &limitedProduct{maximum: maximum}
	if err := p.init(name, priceMinor, quantity); err != nil {
		return nil, err
	}
	return p, nil
}

// Maximum возвращает лимит единиц на одну покупку.
func (p *limitedProduct) Maximum() int32 { return p.maximum }

// Buy дополнительно отклоняет покупки сверх лимита с
// ErrPurchaseLimitExceeded, до проверки стока.
func (p *limitedProduct) Buy(qty int32) (int64, error) {
	if qty <= 0 {
		return 0, ErrQtyInvalid
	}
	if qty > p.maximum {
		return 0, ErrPurchaseLimitExceeded
	}
	return p.baseProduct.Buy(qty)
}

func (p *limitedProduct) Describe() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fmt.Sprintf("%s, Price: %s, Quantity: %d, Limited to %d per order, Promotion: %s",
		p.name, FormatMinor(p.priceMinor), p.quantity, p.maximum, p.promotionNameLocked())
}

// FormatMinor форматирует сумму в минимальных единицах как десятичную строку.
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

var (
	_ Product = (*standardProduct)(nil)
	_ Product = (*nonStockedProduct)(nil)
	_ Product = (*limitedProduct)(nil)
)
