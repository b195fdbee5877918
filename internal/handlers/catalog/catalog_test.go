package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"artisanal-futures/internal/domain/catalog"
	xerrors "artisanal-futures/internal/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	got catalog.ListingQuery
}

func (s *stubService) ListProducts(_ context.Context, q catalog.ListingQuery) (*catalog.ListingResponse, error) {
	s.got = q
	return &catalog.ListingResponse{Items: []catalog.Item{}}, nil
}

func (s *stubService) ListServices(_ context.Context, q catalog.ListingQuery) (*catalog.ListingResponse, error) {
	s.got = q
	return &catalog.ListingResponse{Items: []catalog.Item{}}, nil
}

func (s *stubService) GetItem(_ context.Context, _ catalog.Kind, id string) (*catalog.Item, error) {
	if id == "p1" {
		return &catalog.Item{ID: "p1", IsPublic: true}, nil
	}
	return nil, xerrors.ErrNotFound
}

func router(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewCatalogHandler(svc)
	r := gin.New()
	r.GET("/products", h.ListProducts)
	r.GET("/products/:id", h.GetProduct)
	r.GET("/services", h.ListServices)
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListBindsQuery(t *testing.T) {
	svc := &stubService{}
	r := router(svc)

	w := get(r, "/products?category=Clothing&subcategory=Shirts&page=2&limit=10&sort=asc&attributes=a,b&attributes=c&search=wool")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Clothing", svc.got.CategoryName)
	assert.Equal(t, "Shirts", svc.got.SubcategoryName)
	assert.Equal(t, 2, svc.got.Page)
	assert.Equal(t, 10, svc.got.Limit)
	assert.Equal(t, catalog.SortAsc, svc.got.Sort)
	assert.Equal(t, []string{"a,b", "c"}, svc.got.Attributes)
	assert.Equal(t, "wool", svc.got.Search)
}

func TestListRequiresCategory(t *testing.T) {
	r := router(&stubService{})

	assert.Equal(t, http.StatusBadRequest, get(r, "/services").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/services?category=x&sort=sideways").Code)
}

func TestGetProduct(t *testing.T) {
	r := router(&stubService{})

	assert.Equal(t, http.StatusOK, get(r, "/products/p1").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/products/p2").Code)
}
