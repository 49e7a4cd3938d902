package domain

import "time"

// ReceiptLine — одна позиция чека.
type ReceiptLine struct {
	// ProductName — имя товара на момент покупки.
	ProductName string
	// Qty — купленное количество единиц.
	Qty int32
	// UnitPriceMinor — цена за единицу без скидки.
	UnitPriceMinor int64
	// Promotion — имя применённой акции, пустая строка без акции.
	Promotion string
}

// Receipt фиксирует успешно выполненный заказ.
type Receipt struct {
	ID         string
	Lines      []ReceiptLine
	TotalMinor int64
	CreatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты чека и возвращает список замечаний.
func (r *Receipt) ValidateInvariants() []error {
	var errs []error

	if len(r.Lines) == 0 {
		errs = append(errs, ErrQtyInvalid)
	}
	if r.TotalMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	for _, line := range r.Lines {
		if line.ProductName == "" {
			errs = append(errs, ErrNameRequired)
		}
		if line.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
		}
		if line.UnitPriceMinor < 0 {
			errs = append(errs, ErrPriceNegative)
		}
	}

	return errs
}
