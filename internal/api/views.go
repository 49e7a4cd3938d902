package api

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type productView struct {
	Name        string `json:"name"`
	PriceMinor  int64  `json:"price_minor"`
	Price       string `json:"price"`
	Quantity    int32  `json:"quantity"`
	Active      bool   `json:"active"`
	Promotion   string `json:"promotion,omitempty"`
	Description string `json:"description"`
}

func toProductView(product domain.Product) productView {
	view := productView{
		Name:        product.Name(),
		PriceMinor:  product.PriceMinor(),
		Price:       domain.FormatMinor(product.PriceMinor()),
		Quantity:    product.Quantity(),
		Active:      product.IsActive(),
		Description: product.Describe(),
	}
	if promo := product.Promotion(); promo != nil {
		view.Promotion = promo.Name()
	}
	return view
}

type receiptLineView struct {
	Product        string `json:"product"`
	Qty            int32  `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
	UnitPrice      string `json:"unit_price"`
	Promotion      string `json:"promotion,omitempty"`
}

type receiptView struct {
	ID         string            `json:"id"`
	Lines      []receiptLineView `json:"lines"`
	TotalMinor int64             `json:"total_minor"`
	Total      string            `json:"total"`
	CreatedAt  time.Time         `json:"created_at"`
}

func toReceiptView(receipt domain.Receipt) receiptView {
	lines := make([]receiptLineView, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		lines = append(lines, receiptLineView{
			Product:        line.ProductName,
			Qty:            line.Qty,
			UnitPriceMinor: line.UnitPriceMinor,
			UnitPrice:      domain.FormatMinor(line.UnitPriceMinor),
			Promotion:      line.Promotion,
		})
	}
	return receiptView{
		ID:         receipt.ID,
		Lines:      lines,
		TotalMinor: receipt.TotalMinor,
		Total:      domain.FormatMinor(receipt.TotalMinor),
		CreatedAt:  receipt.CreatedAt,
	}
}

type stockEventView struct {
	Type     string    `json:"type"`
	Qty      int32     `json:"qty"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func toTimelineView(events []domain.StockEvent) []stockEventView {
	result := make([]stockEventView, 0, len(events))
	for _, event := range events {
		result = append(result, stockEventView{
			Type:     string(event.Type),
			Qty:      event.Qty,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	return result
}
