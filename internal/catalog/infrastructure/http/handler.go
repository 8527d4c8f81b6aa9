package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/minishop/backend/internal/catalog/application"
	"github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/pkg/apperr"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

// Register attaches the catalog routes to an existing router, so catalog and
// order handlers can share the /api prefix.
func (h *Handler) Register(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Get("/products", h.listProducts)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

type createProductReq struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	p, err := h.service.CreateProduct(ctx, req.Name, req.Price, req.Stock)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProductResponse(p))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	res, err := h.service.ListProducts(ctx, q.Get("search"), q.Get("sort"), page)
	if err != nil {
		h.writeError(w, err)
		return
	}

	data := make([]productResponse, 0, len(res.Products))
	for _, p := range res.Products {
		data = append(data, newProductResponse(p))
	}
	writeJSON(w, http.StatusOK, listResponse{
		Data: data,
		Meta: listMeta{Page: res.Page, Limit: res.Limit, Total: res.Total, Pages: res.Pages},
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case apperr.KindNotFound:
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
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

type productResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int    `json:"stock"`
}

type listMeta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type listResponse struct {
	Data []productResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

func newProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:    p.ID(),
		Name:  p.Name(),
		Price: p.Price().String(),
		Stock: p.Stock(),
	}
}
