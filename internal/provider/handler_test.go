package provider

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/internal/web/webtest"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
)

func newServer(store *MockStore, files storage.Storage) *webtest.Server {
	return webtest.New(nil, NewHandler(newService(store, files)))
}

func TestHandler_List(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	store.On("List", mock.Anything, mock.MatchedBy(func(f Filter) bool {
		return f.Category == CategoryPhotographer && f.City == "Pune" &&
			f.Verified != nil && *f.Verified && f.Limit == 10 && f.Offset == 20
	})).Return([]Provider{{BusinessName: "Lens Light", Verified: true, PortfolioKeys: []string{"secret-key"}}}, nil)
	srv := newServer(store, storage.NewMemory(""))

	rec := srv.Do(webtest.Request(t, http.MethodGet, "/api/providers?category=photographer&city=Pune&limit=10&offset=20", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body listResponse
	webtest.Decode(t, rec, &body)
	require.Len(t, body.Providers, 1)
	assert.Equal(t, "Lens Light", body.Providers[0].BusinessName)
	assert.Equal(t, 10, body.Limit)
	assert.NotContains(t, rec.Body.String(), "secret-key")
}

func TestHandler_List_UnknownCategory(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	rec := newServer(store, storage.NewMemory("")).Do(webtest.Request(t, http.MethodGet, "/api/providers?category=astrologer", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	store.AssertNotCalled(t, "List")
}

func TestHandler_Get(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	files := storage.NewMemory("https://cdn.example")
	require.NoError(t, files.Put(t.Context(), "providers/x/1.png", bytes.NewReader(pngHeader), 0, "image/png"))

	store := &MockStore{}
	store.On("GetBySlug", mock.Anything, "shubh-decor").
		Return(&Provider{Slug: "shubh-decor", Verified: true, PortfolioKeys: []string{"providers/x/1.png"}}, nil)
	store.On("GetBySlug", mock.Anything, "pending-decor").
		Return(&Provider{Slug: "pending-decor", UserID: owner}, nil)
	store.On("GetBySlug", mock.Anything, "nobody").Return(nil, ErrNotFound)
	srv := newServer(store, files)

	rec := srv.Do(webtest.Request(t, http.MethodGet, "/api/providers/shubh-decor", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Slug      string          `json:"slug"`
		Portfolio []PortfolioItem `json:"portfolio"`
	}
	webtest.Decode(t, rec, &body)
	assert.Equal(t, "shubh-decor", body.Slug)
	assert.Equal(t, "https://cdn.example/providers/x/1.png", body.Portfolio[0].URL)

	tests := []struct {
		name    string
		slug    string
		user    string
		wantErr error
	}{
		{"unverified hidden from public", "pending-decor", "", ErrNotFound},
		{"unverified hidden from others", "pending-decor", uuid.NewString(), ErrNotFound},
		{"missing", "nobody", "", ErrNotFound},
		{"unverified visible to owner", "pending-decor", owner.String(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(store, files)
			req := webtest.Request(t, http.MethodGet, "/api/providers/"+tt.slug, nil)
			if tt.user != "" {
				req = webtest.AsUser(req, tt.user, "provider")
			}
			rec := srv.Do(req)
			if tt.wantErr == nil {
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			assert.ErrorIs(t, srv.Err(), tt.wantErr)
		})
	}
}

func TestHandler_Profile_RequiresProviderRole(t *testing.T) {
	t.Parallel()

	srv := newServer(&MockStore{}, storage.NewMemory(""))

	rec := srv.Do(webtest.Request(t, http.MethodGet, "/api/provider/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.Do(webtest.AsUser(webtest.Request(t, http.MethodGet, "/api/provider/profile", nil), uuid.NewString(), "customer"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandler_CreateProfile(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	store := &MockStore{}
	store.On("Create", mock.Anything, mock.MatchedBy(func(p *Provider) bool { return p.UserID == uid })).Return(nil)
	srv := newServer(store, storage.NewMemory(""))

	rec := srv.Do(webtest.AsUser(webtest.Request(t, http.MethodPost, "/api/provider/profile", map[string]any{
		"business_name": "Kalyana Mandapam",
		"category":      "function_hall",
		"city":          "Madurai",
		"base_price":    5_000_000,
	}), uid.String(), "provider"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body Provider
	webtest.Decode(t, rec, &body)
	assert.Equal(t, "kalyana-mandapam", body.Slug)
	assert.Equal(t, CategoryFunctionHall, body.Category)
}

func TestHandler_CreateProfile_Validation(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	rec := newServer(store, storage.NewMemory("")).Do(webtest.AsUser(webtest.Request(t, http.MethodPost, "/api/provider/profile", map[string]any{
		"category":   "astrologer",
		"base_price": -1,
	}), uuid.NewString(), "provider"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	for _, field := range []string{"business_name", "category", "city", "base_price"} {
		assert.Contains(t, rec.Body.String(), `"field":"`+field+`"`)
	}
	store.AssertNotCalled(t, "Create")
}

func TestHandler_UpdateProfile(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	store := &MockStore{}
	store.On("GetByUserID", mock.Anything, uid).Return(&Provider{UserID: uid, Slug: "old"}, nil)
	store.On("Update", mock.Anything, mock.Anything).Return(nil)
	srv := newServer(store, storage.NewMemory(""))

	rec := srv.Do(webtest.AsUser(webtest.Request(t, http.MethodPut, "/api/provider/profile", map[string]any{
		"business_name": "New Name",
		"category":      "caterer",
		"city":          "Kochi",
	}), uid.String(), "provider"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body Provider
	webtest.Decode(t, rec, &body)
	assert.Equal(t, "old", body.Slug)
	assert.Equal(t, "New Name", body.BusinessName)
}

func multipartRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/provider/portfolio", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandler_UploadPortfolio(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	p := &Provider{ID: uuid.New(), UserID: uid}
	files := storage.NewMemory("https://cdn.example")

	store := &MockStore{}
	store.On("GetByUserID", mock.Anything, uid).Return(p, nil)
	updated := &Provider{ID: p.ID}
	store.On("AddPortfolioKey", mock.Anything, p.ID, mock.Anything, MaxPortfolioItems).
		Run(func(args mock.Arguments) { updated.PortfolioKeys = []string{args.String(2)} }).
		Return(updated, nil)
	srv := newServer(store, files)

	rec := srv.Do(webtest.AsUser(multipartRequest(t, "file", pngHeader), uid.String(), "provider"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Portfolio []PortfolioItem `json:"portfolio"`
	}
	webtest.Decode(t, rec, &body)
	require.Len(t, body.Portfolio, 1)
	assert.Contains(t, body.Portfolio[0].URL, "https://cdn.example/providers/"+p.ID.String()+"/")

	rec = srv.Do(webtest.AsUser(multipartRequest(t, "photo", pngHeader), uid.String(), "provider"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
