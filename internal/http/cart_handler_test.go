package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chandraa-ads/sthree-storefront/internal/cart"
	"github.com/chandraa-ads/sthree-storefront/internal/domain"
	"github.com/chandraa-ads/sthree-storefront/internal/remote"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type remoteMock struct {
	m     sync.Mutex
	lines []domain.CartLine
	err   error
}

func (r *remoteMock) FetchCart(context.Context, string) ([]domain.CartLine, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.CartLine(nil), r.lines...), nil
}

func (r *remoteMock) AddLine(_ context.Context, _ string, line domain.CartLine) ([]domain.CartLine, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.lines = append(r.lines, line)
	return append([]domain.CartLine(nil), r.lines...), nil
}

func (r *remoteMock) UpdateQuantity(_ context.Context, _ string, line domain.CartLine, quantity int) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	for i := range r.lines {
		if r.lines[i].ID == line.ID {
			r.lines[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("line not found")
}

func (r *remoteMock) RemoveLine(_ context.Context, _ string, lineID string) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	for i, l := range r.lines {
		if l.ID == lineID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("line not found")
}

func (r *remoteMock) ClearCart(context.Context, string) error {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return r.err
	}
	r.lines = nil
	return nil
}

type productSourceMock struct {
	products map[string]*domain.Product
}

func (s *productSourceMock) Product(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, remote.ErrNotFound
}

func newCartTestRouter(rm *remoteMock, products *productSourceMock) http.Handler {
	registry := cart.NewRegistry(rm, zap.NewNop())
	handler := NewCartHandler(registry, products, 5*time.Second, zap.NewNop())

	r := chi.NewRouter()
	r.Get("/cart", handler.GetCart)
	r.Delete("/cart", handler.ClearCart)
	r.Post("/cart/lines", handler.AddLine)
	r.Put("/cart/lines/{line_id}", handler.UpdateQuantity)
	r.Delete("/cart/lines/{line_id}", handler.RemoveLine)
	return r
}

func sareeCatalog() *productSourceMock {
	return &productSourceMock{products: map[string]*domain.Product{
		"p1": {
			ID: "p1", Name: "Saree-A", Price: 2499, Stock: 5, ImageURL: "/img/p1.jpg",
			Variants: []domain.ProductVariant{
				{ID: "v-red", Name: "Red", Color: "Red", Price: 2999, Stock: 2, Images: []string{"/img/p1-red.jpg"}},
				{ID: "v-gold", Name: "Gold", Color: "Gold", Stock: 0},
			},
		},
	}}
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(WithUser(req.Context(), userID))
}

func TestGetCart_AnonymousReturnsEmptyCart(t *testing.T) {
	router := newCartTestRouter(&remoteMock{}, sareeCatalog())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/cart", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Empty(t, resp.Lines)
	assert.Equal(t, 0, resp.Units)
}

func TestAddLine_Unauthorized(t *testing.T) {
	router := newCartTestRouter(&remoteMock{}, sareeCatalog())

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)))

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	var resp ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&resp)
	assert.Equal(t, "unauthorized", resp.Code)
}

func TestAddLine_Success_DenormalizesDisplayFields(t *testing.T) {
	router := newCartTestRouter(&remoteMock{}, sareeCatalog())

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", VariantID: "v-red", Size: "Free", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusCreated, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Lines, 1)

	line := resp.Lines[0]
	assert.NotEmpty(t, line.ID)
	assert.Equal(t, "Saree-A", line.Name)
	assert.Equal(t, "Red", line.VariantName)
	assert.Equal(t, "Red", line.Color)
	assert.Equal(t, "/img/p1-red.jpg", line.ImageURL)
	assert.InDelta(t, 2999, line.UnitPrice, 0.001, "variant price override applies")
	assert.Equal(t, 1, resp.Units)
}

func TestAddLine_OutOfStockVariant(t *testing.T) {
	router := newCartTestRouter(&remoteMock{}, sareeCatalog())

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", VariantID: "v-gold", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusConflict, recorder.Code)
	var resp ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&resp)
	assert.Equal(t, "out_of_stock", resp.Code)
}

func TestAddLine_CartContentsCountAgainstStock(t *testing.T) {
	rm := &remoteMock{}
	router := newCartTestRouter(rm, sareeCatalog())

	// variant v-red has stock 2; two adds of 1 succeed, the third is blocked
	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", VariantID: "v-red", Quantity: 1})
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))
		require.Equal(t, http.StatusCreated, recorder.Code)
	}

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", VariantID: "v-red", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))
	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestAddLine_ProductNotFound(t *testing.T) {
	router := newCartTestRouter(&remoteMock{}, sareeCatalog())

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "missing", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddLine_UnknownVariant(t *testing.T) {
	router := newCartTestRouter(&remoteMock{}, sareeCatalog())

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", VariantID: "v-nope", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateQuantity_InvalidTarget(t *testing.T) {
	rm := &remoteMock{lines: []domain.CartLine{{ID: "l1", ProductID: "p1", Quantity: 2}}}
	router := newCartTestRouter(rm, sareeCatalog())

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 0})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("PUT", "/cart/lines/l1", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 2, rm.lines[0].Quantity, "rejected update leaves quantity unchanged")
}

func TestUpdateQuantity_Success(t *testing.T) {
	rm := &remoteMock{lines: []domain.CartLine{{ID: "l1", ProductID: "p1", Quantity: 3}}}
	router := newCartTestRouter(rm, sareeCatalog())

	body, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 5})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("PUT", "/cart/lines/l1", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 5, resp.Lines[0].Quantity)
}

func TestRemoveLine_UnknownIDIsNoOp(t *testing.T) {
	rm := &remoteMock{lines: []domain.CartLine{{ID: "l1", ProductID: "p1", Quantity: 2}}}
	router := newCartTestRouter(rm, sareeCatalog())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("DELETE", "/cart/lines/nope", nil), "user-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Len(t, resp.Lines, 1)
}

func TestClearCart_Succeeds(t *testing.T) {
	rm := &remoteMock{lines: []domain.CartLine{
		{ID: "l1", ProductID: "p1", Quantity: 2},
		{ID: "l2", ProductID: "p2", Quantity: 1},
	}}
	router := newCartTestRouter(rm, sareeCatalog())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("DELETE", "/cart", nil), "user-1"))

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Empty(t, resp.Lines)
}

func TestMutation_RemoteFailure_MapsToBadGateway(t *testing.T) {
	rm := &remoteMock{err: fmt.Errorf("backend down")}
	router := newCartTestRouter(rm, sareeCatalog())

	body, _ := json.Marshal(AddLineRequestDTO{ProductID: "p1", Quantity: 1})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, asUser(httptest.NewRequest("POST", "/cart/lines", bytes.NewReader(body)), "user-1"))

	require.Equal(t, http.StatusBadGateway, recorder.Code)
	var resp ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&resp)
	assert.Equal(t, "remote_unavailable", resp.Code)
}
