package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minishop/backend/internal/catalog/application"
	"github.com/minishop/backend/internal/catalog/domain"
	"github.com/minishop/backend/pkg/apperr"
	"github.com/minishop/backend/pkg/logging"
)

type memProductRepo struct {
	products map[int64]*domain.Product
	nextID   int64
}

func (m *memProductRepo) Save(_ context.Context, p *domain.Product) error {
	m.nextID++
	p.SetID(m.nextID)
	m.products[p.ID()] = p
	return nil
}

func (m *memProductRepo) Find(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	return p, nil
}

func (m *memProductRepo) List(_ context.Context, f application.ListFilter) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		if f.Search == "" || strings.Contains(strings.ToLower(p.Name()), strings.ToLower(f.Search)) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *memProductRepo) Count(_ context.Context, search string) (int, error) {
	list, _ := m.List(context.Background(), application.ListFilter{Search: search})
	return len(list), nil
}

func newTestHandler() http.Handler {
	log := logging.New("error")
	repo := &memProductRepo{products: make(map[int64]*domain.Product)}
	return NewHandler(log, application.NewService(log, repo)).Routes()
}

func TestCreateProductEndpoint(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"name":"Iphone 16 Pro","price":"1299.99","stock":10}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Price string `json:"price"`
		Stock int    `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "1299.99", resp.Price)
	assert.Equal(t, 10, resp.Stock)
}

func TestCreateProductEndpointValidation(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"name":`},
		{"empty name", `{"name":"","price":"1.00","stock":1}`},
		{"zero price", `{"name":"Mouse","price":"0.00","stock":1}`},
		{"comma separator", `{"name":"Mouse","price":"1299,99","stock":1}`},
		{"negative stock", `{"name":"Mouse","price":"1.00","stock":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListProductsEndpoint(t *testing.T) {
	h := newTestHandler()

	for _, body := range []string{
		`{"name":"Iphone 16 Pro","price":"1299.99","stock":10}`,
		`{"name":"Pixel 9","price":"899.00","stock":5}`,
		`{"name":"Iphone case","price":"25.00","stock":50}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/products?search=iphone&page=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
		Meta struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.Limit)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Pages)
}
