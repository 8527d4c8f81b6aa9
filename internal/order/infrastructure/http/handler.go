package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/minishop/backend/internal/order/application"
	"github.com/minishop/backend/internal/order/domain"
	"github.com/minishop/backend/pkg/apperr"
	"github.com/minishop/backend/pkg/idempotency"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	idem    *idempotency.Store // nil disables the idempotency-key guard
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, idem *idempotency.Store) *Handler {
	return &Handler{
		log:     log,
		service: service,
		idem:    idem,
		tracer:  otel.Tracer("order-http"),
	}
}

// Register attaches the order routes to an existing router, so catalog and
// order handlers can share the /api prefix.
func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/checkout", h.checkout)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

type createOrderReq struct {
	CustomerID string          `json:"customerId"`
	Items      []createItemReq `json:"items"`
}

type createItemReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type checkoutReq struct {
	CustomerID string `json:"customerId"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	var idemKey string
	if key := r.Header.Get("Idempotency-Key"); key != "" && h.idem != nil {
		idemKey = h.idem.Key("create-order", key)
		seen, err := h.idem.Seen(ctx, idemKey)
		if err != nil {
			h.log.Error("idempotency check failed", "err", err)
			idemKey = ""
		} else if seen {
			writeJSON(w, http.StatusConflict, errorBody{Error: "Duplicate request"})
			return
		}
	}

	items := make([]application.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, application.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.service.CreateOrder(ctx, req.CustomerID, items)
	if err != nil {
		// Give the reservation back so a retry with the same key is not
		// rejected for the TTL of a request that created nothing.
		if idemKey != "" {
			if relErr := h.idem.Release(ctx, idemKey); relErr != nil {
				h.log.Error("idempotency release failed", "err", relErr)
			}
		}
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Order not found"})
		return
	}
	customerID := r.URL.Query().Get("customerId")

	o, err := h.service.GetOrder(ctx, id, customerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CheckoutOrder")
	defer span.End()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Order not found"})
		return
	}

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	o, err := h.service.Checkout(ctx, id, req.CustomerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderResponse(o))
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case apperr.KindAccessDenied:
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case apperr.KindDomainViolation:
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		h.log.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type orderResponse struct {
	ID         int64               `json:"id"`
	CustomerID string              `json:"customerId"`
	Status     string              `json:"status"`
	Total      string              `json:"total"`
	CreatedAt  string              `json:"createdAt"`
	Items      []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID int64  `json:"productId"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

func newOrderResponse(o *domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID(),
			UnitPrice: item.UnitPrice().String(),
			Quantity:  item.Quantity(),
			Subtotal:  item.Subtotal().String(),
		})
	}
	return orderResponse{
		ID:         o.ID(),
		CustomerID: o.CustomerID(),
		Status:     string(o.Status()),
		Total:      o.Total().String(),
		CreatedAt:  o.CreatedAt().Format("2006-01-02 15:04:05"),
		Items:      items,
	}
}
