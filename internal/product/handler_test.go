package product

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohirdev/delivery-api/internal/product/entity"
)

func newTestHandler() *Handler {
	return &Handler{svc: NewService(nil, newFakeRepo()), logger: zap.NewNop().Sugar()}
}

// serveWithID routes through a mux so r.PathValue("id") is populated.
func serveWithID(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /product/create", h.Create)
	mux.HandleFunc("GET /product/list", h.List)
	mux.HandleFunc("GET /product/{id}", h.Get)
	mux.HandleFunc("PUT /product/{id}/update", h.Put)
	mux.HandleFunc("DELETE /product/{id}/delete", h.Delete)
	return mux
}

func TestCreate_EchoesProduct(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/product/create", strings.NewReader(`{"name":"Palov","price":40000}`))
	rec := httptest.NewRecorder()
	serveWithID(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.NotZero(t, p.ID)
	require.Equal(t, "Palov", p.Name)
	require.Equal(t, int64(40000), p.Price)
}

func TestCreate_MissingName(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/product/create", strings.NewReader(`{"price":40000}`))
	rec := httptest.NewRecorder()
	serveWithID(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGet_NotFoundStatus(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/product/99", nil)
	rec := httptest.NewRecorder()
	serveWithID(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGet_InvalidID(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/product/abc", nil)
	rec := httptest.NewRecorder()
	serveWithID(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPut_PartialUpdate(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	mux := serveWithID(h)

	req := httptest.NewRequest(http.MethodPost, "/product/create", strings.NewReader(`{"name":"Palov","price":40000}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/product/1/update", strings.NewReader(`{"price":45000}`))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	require.Equal(t, "Palov", p.Name)
	require.Equal(t, int64(45000), p.Price)
}

func TestDelete_NoContent(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	mux := serveWithID(h)

	req := httptest.NewRequest(http.MethodPost, "/product/create", strings.NewReader(`{"name":"Palov","price":40000}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/product/1/delete", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// deleting again reports not found
	req = httptest.NewRequest(http.MethodDelete, "/product/1/delete", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList(t *testing.T) {
	t.Parallel()

	h := newTestHandler()
	mux := serveWithID(h)

	for _, body := range []string{`{"name":"Palov","price":40000}`, `{"name":"Lagman","price":35000}`} {
		req := httptest.NewRequest(http.MethodPost, "/product/create", strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/product/list", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
}
