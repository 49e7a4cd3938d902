package domain

// Promotion — стратегия расчёта скидки для партии товара.
// Чистая функция от (цена за единицу, количество): не хранит состояние товара
// и может разделяться несколькими товарами одновременно.
type Promotion interface {
	// Name возвращает отображаемое имя акции.
	Name() string
	// Apply считает итоговую стоимость qty единиц при цене unitPriceMinor.
	// Количество должно быть > 0 — это инвариант вызывающей стороны.
	Apply(unitPriceMinor int64, qty int32) int64
}

// noPromotion — базовый вариант без скидки: цена × количество.
type noPromotion struct {
	name string
}

// NewNoPromotion возвращает акцию-пустышку (полная цена).
func NewNoPromotion(name string) Promotion {
	return &noPromotion{name: name}
}

func (p *noPromotion) Name() string { return p.name }

func (p *noPromotion) Apply(unitPriceMinor int64, qty int32) int64 {
	return unitPriceMinor * int64(qty)
}

// percentDiscount снижает полную стоимость на фиксированный процент.
type percentDiscount struct {
	name    string
	percent float64
}

// NewPercentDiscount создаёт процентную скидку. Процент вне [0, 100]
// отклоняется на этапе конструирования.
func NewPercentDiscount(name string, percent float64) (Promotion, error) {
	if percent < 0 || percent > 100 {
		return nil, ErrPercentOutOfRange
	}
	return &percentDiscount{name: name, percent: percent}, nil
}

func (p *percentDiscount) Name() string { return p.name }

func (p *percentDiscount) Apply(unitPriceMinor int64, qty int32) int64 {
	full := unitPriceMinor * int64(qty)
	discount := int64(float64(full) * p.percent / 100)
	return full - discount
}

// secondHalfPrice — каждая вторая единица в партии за полцены.
// Непарная последняя единица идёт по полной цене.
type secondHalfPrice struct {
	name string
}

// NewSecondHalfPrice создаёт акцию «вторая единица за полцены».
func NewSecondHalfPrice(name string) Promotion {
	return &secondHalfPrice{name: name}
}

func (p *secondHalfPrice) Name() string { return p.name }

func (p *secondHalfPrice) Apply(unitPriceMinor int64, qty int32) int64 {
	discounted := int64(qty / 2)
	fullPriced := int64(qty) - discounted
	return unitPriceMinor*fullPriced + (unitPriceMinor/2)*discounted
}

// thirdOneFree — каждая третья единица в партии бесплатно.
type thirdOneFree struct {
	name string
}

// NewThirdOneFree создаёт акцию «третья единица бесплатно».
func NewThirdOneFree(name string) Promotion {
	return &thirdOneFree{name: name}
}

func (p *thirdOneFree) Name() string { return p.name }

func (p *thirdOneFree) Apply(unitPriceMinor int64, qty int32) int64 {
	free := int64(qty / 3)
	return unitPriceMinor * (int64(qty) - free)
}

var (
	_ Promotion = (*noPromotion)(nil)
	_ Promotion = (*percentDiscount)(nil)
	_ Promotion = (*secondHalfPrice)(nil)
	_ Promotion = (*thirdOneFree)(nil)
)
