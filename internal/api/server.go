package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/checkout"
)

const (
	defaultListReceiptsLimit = 100
	maxRequestBodyBytes      = 1 << 20
)

var errUnknownPromotionType = errors.New("unknown promotion type")

// Server реализует HTTP/JSON API поверх сервиса витрины.
type Server struct {
	svc      checkout.Service
	idemRepo domain.IdempotencyRepository
	logger   *log.Entry
}

// NewServer конструирует HTTP-сервер API. idemRepo может быть nil, тогда
// заголовок Idempotency-Key игнорируется.
func NewServer(svc checkout.Service, idemRepo domain.IdempotencyRepository, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "http-api")
	}
	return &Server{
		svc:      svc,
		idemRepo: idemRepo,
		logger:   logger,
	}
}

// Routes собирает маршрутизацию API.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/products", s.handleListProducts)
	mux.HandleFunc("GET /v1/products/total-quantity", s.handleTotalQuantity)
	mux.HandleFunc("GET /v1/products/{name}/timeline", s.handleProductTimeline)
	mux.HandleFunc("POST /v1/products/{name}/restock", s.handleRestock)
	mux.HandleFunc("PUT /v1/products/{name}/promotion", s.handleSetPromotion)
	mux.HandleFunc("DELETE /v1/products/{name}/promotion", s.handleClearPromotion)
	mux.HandleFunc("POST /v1/orders", s.handlePlaceOrder)
	mux.HandleFunc("GET /v1/receipts", s.handleListReceipts)
	mux.HandleFunc("GET /v1/receipts/{id}", s.handleGetReceipt)
	return mux
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	products := s.svc.ListProducts()
	views := make([]productView, 0, len(products))
	for _, product := range products {
		views = append(views, toProductView(product))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"products": views})
}

func (s *Server) handleTotalQuantity(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]int{"total_quantity": s.svc.TotalQuantity()})
}

func (s *Server) handleProductTimeline(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.ProductTimeline(r.PathValue("name"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"events": toTimelineView(events)})
}

type restockRequest struct {
	Qty int32 `json:"qty"`
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := s.svc.Restock(r.PathValue("name"), req.Qty)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProductView(product))
}

type promotionRequest struct {
	Type    string  `json:"type"`
	Name    string  `json:"name,omitempty"`
	Percent float64 `json:"percent,omitempty"`
}

func (s *Server) handleSetPromotion(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := s.decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	promo, err := buildPromotion(req)
	if err != nil {
		if errors.Is(err, errUnknownPromotionType) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.writeDomainError(w, err)
		return
	}

	if err := s.svc.SetPromotion(r.PathValue("name"), promo); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPromotion(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearPromotion(r.PathValue("name")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildPromotion превращает тело запроса в доменную акцию.
func buildPromotion(req promotionRequest) (domain.Promotion, error) {
	switch req.Type {
	case "percent":
		name := req.Name
		if name == "" {
			name = fmt.Sprintf("%g%% off", req.Percent)
		}
		return domain.NewPercentDiscount(name, req.Percent)
	case "second_half_price":
		name := req.Name
		if name == "" {
			name = "second one at half price"
		}
		return domain.NewSecondHalfPrice(name), nil
	case "third_one_free":
		name := req.Name
		if name == "" {
			name = "third one free"
		}
		return domain.NewThirdOneFree(name), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownPromotionType, req.Type)
	}
}

type orderLineRequest struct {
	Product string `json:"product"`
	Qty     int32  `json:"qty"`
}

type orderRequest struct {
	Lines []orderLineRequest `json:"lines"`
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if key == "" || s.idemRepo == nil {
		status, resp := s.placeOrder(body)
		s.writeJSON(w, status, resp)
		return
	}

	s.placeOrderIdempotent(w, key, body)
}

// placeOrder выполняет заказ и возвращает HTTP-статус с телом ответа.
func (s *Server) placeOrder(body []byte) (int, any) {
	var req orderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, errorResponse{Error: "invalid JSON body"}
	}

	lines := make([]checkout.OrderLineRequest, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, checkout.OrderLineRequest{ProductName: line.Product, Qty: line.Qty})
	}

	receipt, err := s.svc.PlaceOrder(lines)
	if err != nil {
		return statusFromError(err), errorResponse{Error: err.Error()}
	}
	return http.StatusCreated, toReceiptView(receipt)
}

func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.svc.GetReceipt(r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toReceiptView(receipt))
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	limit := defaultListReceiptsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if parsed > 0 {
			limit = parsed
		}
	}

	receipts, err := s.svc.ListReceipts(limit)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	views := make([]receiptView, 0, len(receipts))
	for _, receipt := range receipts {
		views = append(views, toReceiptView(receipt))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"receipts": views})
}

func (s *Server) decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// statusFromError сводит доменные ошибки к HTTP-статусам.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrReceiptNotFound):
		return http.StatusNotFound
	case domain.IsPurchaseRejected(err):
		return http.StatusUnprocessableEntity
	case domain.IsInvalidArgument(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("internal error")
		s.writeError(w, status, "internal error")
		return
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("failed to encode response")
	}
}
