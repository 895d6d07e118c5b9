package product

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/commons"
	"mytrade/internal/domain"
	apperrors "mytrade/internal/errors"
)

type mockCatalog struct {
	ListProductsFunc func(ctx context.Context, token string) ([]domain.Product, error)
	lastToken        string
	calls            int
}

func (m *mockCatalog) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	m.calls++
	m.lastToken = token
	return m.ListProductsFunc(ctx, token)
}

type mockSessionExpirer struct {
	expired int
}

func (m *mockSessionExpirer) ExpireSession(ctx context.Context) {
	m.expired++
}

func intPtr(n int) *int { return &n }

func catalogOf(products ...domain.Product) *mockCatalog {
	return &mockCatalog{ListProductsFunc: func(ctx context.Context, token string) ([]domain.Product, error) {
		return products, nil
	}}
}

var testProducts = []domain.Product{
	{ID: "p-1", Name: "Arabica beans", Category: "coffee", Price: 12.5, Stock: intPtr(40)},
	{ID: "p-2", Name: "Green tea", Description: "loose leaf", Category: "tea", Price: 6, Stock: intPtr(0)},
	{ID: "p-3", Name: "Robusta beans", Category: "Coffee", Price: 9},
}

func TestService_GetProducts_ByIDs(t *testing.T) {
	svc := NewService(catalogOf(testProducts...))

	found, notFound, err := svc.GetProducts(context.Background(), "tok", Filter{IDs: []string{"p-3", "p-9", "p-1"}})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "p-1", found[0].ID)
	assert.Equal(t, "p-3", found[1].ID)
	assert.Equal(t, []string{"p-9"}, notFound)
}

func TestService_GetProducts_QueryAndCategory(t *testing.T) {
	svc := NewService(catalogOf(testProducts...))

	found, notFound, err := svc.GetProducts(context.Background(), "tok", Filter{Category: "coffee", Query: "BEANS"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Empty(t, notFound)

	found, _, err = svc.GetProducts(context.Background(), "tok", Filter{Query: "loose"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p-2", found[0].ID)
}

func TestService_GetProducts_FilteredOutIDIsNotFound(t *testing.T) {
	svc := NewService(catalogOf(testProducts...))

	found, notFound, err := svc.GetProducts(context.Background(), "tok", Filter{IDs: []string{"p-1", "p-2"}, Category: "tea"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"p-1"}, notFound)
}

func TestSearchUseCase_MapsStock(t *testing.T) {
	uc := NewSearchUseCase(NewService(catalogOf(testProducts...)))

	resp, err := uc.SearchProducts(context.Background(), "tok", SearchProductsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 3)
	assert.Equal(t, 40, resp.Products[0].AvailableStock)
	assert.True(t, resp.Products[0].HasStock)
	assert.False(t, resp.Products[1].HasStock)
	assert.Nil(t, resp.Products[2].Stock)
	assert.Equal(t, 0, resp.Products[2].AvailableStock)
	assert.NotNil(t, resp.NotFound)
}

type controllerFixture struct {
	catalog *mockCatalog
	expirer *mockSessionExpirer
	ctrl    *Controller
}

func newControllerFixture(catalog *mockCatalog) *controllerFixture {
	expirer := &mockSessionExpirer{}
	return &controllerFixture{
		catalog: catalog,
		expirer: expirer,
		ctrl:    NewModule(catalog, expirer, zap.NewNop()),
	}
}

func (f *controllerFixture) get(target string, signedIn bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if signedIn {
		p := &auth.Principal{Viewer: domain.Viewer{ID: "r-1", Role: domain.RoleRetailer}, Token: "jwt"}
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	f.ctrl.HandleSearchProducts(rec, req)
	return rec
}

func TestHandleSearchProducts_Success(t *testing.T) {
	f := newControllerFixture(catalogOf(testProducts...))

	rec := f.get("/api/v1/products?ids=p-1,%20p-4,p-1&category=coffee", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "jwt", f.catalog.lastToken)

	var resp SearchProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.TraceID)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "p-1", resp.Products[0].ID)
	assert.Equal(t, []string{"p-4"}, resp.NotFound)
}

func TestHandleSearchProducts_Validation(t *testing.T) {
	tooMany := make([]string, maxProductIDs+1)
	for i := range tooMany {
		tooMany[i] = "p-" + strconv.Itoa(i)
	}

	tests := []struct {
		name   string
		target string
	}{
		{"blank id", "/api/v1/products?ids=p-1,,p-2"},
		{"empty ids param", "/api/v1/products?ids="},
		{"too many ids", "/api/v1/products?ids=" + strings.Join(tooMany, ",")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newControllerFixture(catalogOf(testProducts...))

			rec := f.get(tt.target, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body commons.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "VALIDATION_ERROR", body.Error)
			assert.Zero(t, f.catalog.calls)
		})
	}
}

func TestHandleSearchProducts_RepeatedIDsCountOnce(t *testing.T) {
	repeated := make([]string, maxProductIDs+1)
	for i := range repeated {
		repeated[i] = "%20p-1"
	}
	f := newControllerFixture(catalogOf(testProducts...))

	rec := f.get("/api/v1/products?ids="+strings.Join(repeated, ","), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SearchProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "p-1", resp.Products[0].ID)
	assert.Empty(t, resp.NotFound)
}

func TestHandleSearchProducts_NotSignedIn(t *testing.T) {
	f := newControllerFixture(catalogOf(testProducts...))

	rec := f.get("/api/v1/products", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSearchProducts_BackendRejectsToken(t *testing.T) {
	f := newControllerFixture(&mockCatalog{ListProductsFunc: func(ctx context.Context, token string) ([]domain.Product, error) {
		return nil, apperrors.NewUnauthorizedError("jwt expired")
	}})

	rec := f.get("/api/v1/products", true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 1, f.expirer.expired)

	var body commons.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, commons.CodeSessionExpired, body.Error)
}

func TestHandleSearchProducts_BackendDown(t *testing.T) {
	f := newControllerFixture(&mockCatalog{ListProductsFunc: func(ctx context.Context, token string) ([]domain.Product, error) {
		return nil, apperrors.NewNetworkError("backend unreachable", nil)
	}})

	rec := f.get("/api/v1/products", true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
