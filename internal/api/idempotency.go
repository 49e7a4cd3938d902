package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// placeOrderIdempotent обрабатывает заказ с учётом Idempotency-Key: повтор
// с тем же ключом и телом возвращает закэшированный ответ, повтор с другим
// телом отклоняется.
func (s *Server) placeOrderIdempotent(w http.ResponseWriter, key string, body []byte) {
	hash := buildRequestHash("POST /v1/orders", body)

	record, err := s.idemRepo.CreateProcessing(key, hash, time.Now().UTC().Add(idempotencyTTL))
	if err != nil {
		s.replayIdempotent(w, record, err)
		return
	}

	status, resp := s.placeOrder(body)

	respBody, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		s.logger.WithError(marshalErr).WithField("idempotency_key", key).Warn("failed to encode idempotent response")
	}

	if status < http.StatusMultipleChoices {
		if cacheErr := s.idemRepo.MarkDone(key, respBody, status); cacheErr != nil {
			s.logger.WithError(cacheErr).WithField("idempotency_key", key).Warn("failed to store idempotent success response")
		}
	} else {
		if cacheErr := s.idemRepo.MarkFailed(key, respBody, status); cacheErr != nil {
			s.logger.WithError(cacheErr).WithField("idempotency_key", key).Warn("failed to store idempotent failure response")
		}
	}

	s.writeRaw(w, status, respBody)
}

// replayIdempotent обслуживает повторный запрос по существующей записи.
func (s *Server) replayIdempotent(w http.ResponseWriter, record domain.IdempotencyRecord, createErr error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		s.writeError(w, http.StatusConflict, "idempotency key is already used with different request payload")
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			if len(record.ResponseBody) == 0 || record.HTTPStatus == 0 {
				s.writeError(w, http.StatusInternalServerError, "idempotency cache is empty")
				return
			}
			s.writeRaw(w, record.HTTPStatus, record.ResponseBody)
		case domain.IdempotencyStatusProcessing:
			s.writeError(w, http.StatusConflict, "request with the same idempotency key is already processing")
		default:
			s.writeError(w, http.StatusInternalServerError, "unknown idempotency record status")
		}
	default:
		s.logger.WithError(createErr).Warn("failed to create idempotency record")
		s.writeError(w, http.StatusInternalServerError, "failed to initialize idempotency request")
	}
}

func (s *Server) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.WithError(err).Warn("failed to write response")
	}
}

// buildRequestHash считает sha256 от метода и тела запроса.
func buildRequestHash(method string, body []byte) string {
	payload := make([]byte, 0, len(method)+1+len(body))
	payload = append(payload, method...)
	payload = append(payload, ':')
	payload = append(payload, body...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
