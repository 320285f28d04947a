package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// OrderService — операции над заказами, доступные через HTTP.
type OrderService interface {
	CreateOrder(ctx context.Context, productIDs []int64) (int64, error)
	ReturnOrder(ctx context.Context, orderID int64, productID *int64) ([]int64, error)
	IssueOrder(ctx context.Context, orderID int64) error
	GetAllOrders(ctx context.Context) ([]domain.OrderSummary, error)
}

// Handler обслуживает маршруты /order/*.
type Handler struct {
	service OrderService
	logger  *log.Entry
}

// NewHandler создаёт HTTP handler заказов.
func NewHandler(service OrderService, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes регистрирует маршруты заказов.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/order", func(r chi.Router) {
		r.Post("/create", h.createOrder)             // POST /order/create
		r.Post("/{orderId}/return", h.returnProduct) // POST /order/{orderId}/return
		r.Post("/{orderId}/issue", h.issueOrder)     // POST /order/{orderId}/issue
		r.Get("/all", h.getAllOrders)                // GET  /order/all
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var productIDs []int64
	if err := decodeBody(r, &productIDs); err != nil {
		h.writeError(w, r, err)
		return
	}

	orderID, err := h.service.CreateOrder(r.Context(), productIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.WithField("order_id", orderID).Debug("order created via http")
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) returnProduct(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var productID *int64
	if err := decodeBody(r, &productID); err != nil {
		h.writeError(w, r, err)
		return
	}

	remaining, err := h.service.ReturnOrder(r.Context(), orderID, productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, remaining)
}

func (h *Handler) issueOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.IssueOrder(r.Context(), orderID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) getAllOrders(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.GetAllOrders(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, summaries)
}

// badRequestError означает ошибку разбора запроса (тело или параметры пути).
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func orderIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("Invalid order id: %q", raw)
	}
	return id, nil
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("Request body is required")
		}
		return badRequest("Malformed request body: %v", err)
	}
	if decoder.More() {
		return badRequest("Malformed request body: unexpected data after JSON value")
	}
	return nil
}

// writeError переводит ошибку в HTTP-ответ: бизнес-ошибки и ошибки разбора дают 400
// с текстом сообщения, всё остальное даёт 500 без деталей.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var badReq *badRequestError
	switch {
	case domain.IsInvalidArgument(err), errors.As(err, &badReq):
		writeText(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		writeText(w, http.StatusInternalServerError, "internal error")
	}
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}

func respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
