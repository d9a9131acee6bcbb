package provider

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/pkg/cache"
	"github.com/subhakaryam/subhakaryam/pkg/logger"
	"github.com/subhakaryam/subhakaryam/pkg/storage"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newService(store Store, files storage.Storage) *Service {
	return NewService(store, files, cache.NewMemory[[]Provider](), logger.NewNope())
}

func validInput() Input {
	return Input{
		BusinessName: "Sri Venkateswara Purohit Services",
		Category:     CategoryPriest,
		City:         " Hyderabad ",
		Bio:          `<p>Vedic rituals</p><script>alert(1)</script>`,
		BasePrice:    1_100_000,
	}
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := newService(store, storage.NewMemory(""))

	uid := uuid.New()
	p, err := svc.Create(context.Background(), uid, validInput())
	require.NoError(t, err)
	assert.Equal(t, uid, p.UserID)
	assert.Equal(t, "sri-venkateswara-purohit-services", p.Slug)
	assert.Equal(t, "Hyderabad", p.City)
	assert.Contains(t, p.Bio, "Vedic rituals")
	assert.NotContains(t, p.Bio, "script")
}

func TestService_Create_SlugTaken(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	store.On("Create", mock.Anything, mock.MatchedBy(func(p *Provider) bool {
		return p.Slug == "lens-light"
	})).Return(ErrSlugTaken).Once()
	store.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	svc := newService(store, storage.NewMemory(""))

	in := validInput()
	in.BusinessName = "Lens & Light"
	p, err := svc.Create(context.Background(), uuid.New(), in)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^lens-light-[a-z0-9]+$`), p.Slug)
	store.AssertExpectations(t)
}

func TestService_Create_Errors(t *testing.T) {
	t.Parallel()

	t.Run("profile exists", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("Create", mock.Anything, mock.Anything).Return(ErrProfileExists)
		_, err := newService(store, storage.NewMemory("")).Create(context.Background(), uuid.New(), validInput())
		require.ErrorIs(t, err, ErrProfileExists)
		store.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("slug always taken", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("Create", mock.Anything, mock.Anything).Return(ErrSlugTaken)
		_, err := newService(store, storage.NewMemory("")).Create(context.Background(), uuid.New(), validInput())
		require.ErrorIs(t, err, ErrSlugTaken)
		store.AssertNumberOfCalls(t, "Create", slugAttempts)
	})

	t.Run("invalid category", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		in := validInput()
		in.Category = "astrologer"
		_, err := newService(store, storage.NewMemory("")).Create(context.Background(), uuid.New(), in)
		require.ErrorIs(t, err, ErrInvalidCategory)
		store.AssertNotCalled(t, "Create")
	})
}

func TestService_Create_ReservedSlug(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(nil)
	in := validInput()
	in.BusinessName = "Admin"
	p, err := newService(store, storage.NewMemory("")).Create(context.Background(), uuid.New(), in)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", p.Slug)
}

func TestService_List_Cached(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	verified := true
	want := Filter{Category: CategoryCaterer, City: "Chennai", Verified: &verified, Limit: maxLimit}
	store.On("List", mock.Anything, want).Return([]Provider{{BusinessName: "Annapoorna Caterers"}}, nil).Once()
	svc := newService(store, storage.NewMemory(""))

	for range 3 {
		list, err := svc.List(context.Background(), Filter{Category: CategoryCaterer, City: "Chennai", Verified: &verified, Limit: 500})
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	store.AssertNumberOfCalls(t, "List", 1)
}

func TestService_Update_InvalidatesListing(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	existing := &Provider{ID: uuid.New(), UserID: uid, Slug: "annapoorna", Category: CategoryCaterer}
	store := &MockStore{}
	store.On("List", mock.Anything, mock.Anything).Return([]Provider{}, nil).Twice()
	store.On("GetByUserID", mock.Anything, uid).Return(existing, nil)
	store.On("Update", mock.Anything, existing).Return(nil)
	svc := newService(store, storage.NewMemory(""))

	_, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)

	in := validInput()
	in.Category = CategoryCaterer
	p, err := svc.Update(context.Background(), uid, in)
	require.NoError(t, err)
	assert.Equal(t, "annapoorna", p.Slug, "slug is stable across renames")
	assert.Equal(t, int64(1_100_000), p.BasePrice)

	_, err = svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_Update_NoProfile(t *testing.T) {
	t.Parallel()

	store := &MockStore{}
	store.On("GetByUserID", mock.Anything, mock.Anything).Return(nil, ErrNotFound)
	_, err := newService(store, storage.NewMemory("")).Update(context.Background(), uuid.New(), validInput())
	require.ErrorIs(t, err, ErrNotFound)
	store.AssertNotCalled(t, "Update")
}

func TestService_UploadPortfolio(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	p := &Provider{ID: uuid.New(), UserID: uid}
	store := &MockStore{}
	store.On("GetByUserID", mock.Anything, uid).Return(p, nil)

	var stored string
	store.On("AddPortfolioKey", mock.Anything, p.ID, mock.Anything, MaxPortfolioItems).
		Run(func(args mock.Arguments) { stored = args.String(2) }).
		Return(&Provider{ID: p.ID, PortfolioKeys: []string{"k"}}, nil)

	files := storage.NewMemory("https://cdn.example")
	svc := newService(store, files)

	got, err := svc.UploadPortfolio(context.Background(), uid, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Len(t, got.PortfolioKeys, 1)

	assert.True(t, strings.HasPrefix(stored, "providers/"+p.ID.String()+"/"), stored)
	assert.True(t, strings.HasSuffix(stored, ".png"), stored)
	data, contentType, ok := files.Object(stored)
	require.True(t, ok)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, pngHeader, data)
}

func TestService_UploadPortfolio_Rejections(t *testing.T) {
	t.Parallel()

	uid := uuid.New()

	t.Run("not an image", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("GetByUserID", mock.Anything, uid).Return(&Provider{ID: uuid.New()}, nil)
		_, err := newService(store, storage.NewMemory("")).UploadPortfolio(context.Background(), uid, strings.NewReader("%PDF-1.7\n"))
		require.ErrorIs(t, err, storage.ErrInvalidMIME)
		store.AssertNotCalled(t, "AddPortfolioKey")
	})

	t.Run("portfolio full before upload", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("GetByUserID", mock.Anything, uid).Return(&Provider{ID: uuid.New(), PortfolioKeys: make([]string, MaxPortfolioItems)}, nil)
		_, err := newService(store, storage.NewMemory("")).UploadPortfolio(context.Background(), uid, bytes.NewReader(pngHeader))
		require.ErrorIs(t, err, ErrPortfolioFull)
	})

	t.Run("portfolio filled concurrently", func(t *testing.T) {
		t.Parallel()
		p := &Provider{ID: uuid.New()}
		var stored string
		store := &MockStore{}
		store.On("GetByUserID", mock.Anything, uid).Return(p, nil)
		store.On("AddPortfolioKey", mock.Anything, p.ID, mock.Anything, MaxPortfolioItems).
			Run(func(args mock.Arguments) { stored = args.String(2) }).
			Return(nil, ErrPortfolioFull)
		files := storage.NewMemory("")

		_, err := newService(store, files).UploadPortfolio(context.Background(), uid, bytes.NewReader(pngHeader))
		require.ErrorIs(t, err, ErrPortfolioFull)
		_, _, ok := files.Object(stored)
		assert.False(t, ok, "orphaned object is deleted")
	})
}

func TestService_RemovePortfolio(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	p := &Provider{ID: uuid.New(), UserID: uid}
	files := storage.NewMemory("")
	key := "providers/" + p.ID.String() + "/one.png"
	require.NoError(t, files.Put(context.Background(), key, bytes.NewReader(pngHeader), int64(len(pngHeader)), "image/png"))

	store := &MockStore{}
	store.On("GetByUserID", mock.Anything, uid).Return(p, nil)
	store.On("RemovePortfolioKey", mock.Anything, p.ID, key).Return(&Provider{ID: p.ID}, nil)
	store.On("RemovePortfolioKey", mock.Anything, p.ID, "other").Return(nil, ErrPortfolioItem)
	svc := newService(store, files)

	_, err := svc.RemovePortfolio(context.Background(), uid, key)
	require.NoError(t, err)
	_, _, ok := files.Object(key)
	assert.False(t, ok)

	_, err = svc.RemovePortfolio(context.Background(), uid, "other")
	require.ErrorIs(t, err, ErrPortfolioItem)
}

func TestService_Portfolio_InvalidatesListing(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	p := &Provider{ID: uuid.New(), UserID: uid}
	store := &MockStore{}
	store.On("List", mock.Anything, mock.Anything).Return([]Provider{}, nil).Times(3)
	store.On("GetByUserID", mock.Anything, uid).Return(p, nil)
	store.On("AddPortfolioKey", mock.Anything, p.ID, mock.Anything, MaxPortfolioItems).
		Return(&Provider{ID: p.ID, PortfolioKeys: []string{"k"}}, nil)
	store.On("RemovePortfolioKey", mock.Anything, p.ID, "k").Return(&Provider{ID: p.ID}, nil)
	svc := newService(store, storage.NewMemory(""))
	ctx := context.Background()

	_, err := svc.List(ctx, Filter{})
	require.NoError(t, err)

	_, err = svc.UploadPortfolio(ctx, uid, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	_, err = svc.List(ctx, Filter{})
	require.NoError(t, err)

	_, err = svc.RemovePortfolio(ctx, uid, "k")
	require.NoError(t, err)
	_, err = svc.List(ctx, Filter{})
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "List", 3)
}

func TestService_PortfolioURLs(t *testing.T) {
	t.Parallel()

	files := storage.NewMemory("https://cdn.example")
	require.NoError(t, files.Put(context.Background(), "providers/a/1.png", bytes.NewReader(pngHeader), 0, "image/png"))
	svc := newService(&MockStore{}, files)

	items, err := svc.PortfolioURLs(context.Background(), &Provider{PortfolioKeys: []string{"providers/a/1.png"}})
	require.NoError(t, err)
	assert.Equal(t, []PortfolioItem{{Key: "providers/a/1.png", URL: "https://cdn.example/providers/a/1.png"}}, items)

	_, err = svc.PortfolioURLs(context.Background(), &Provider{PortfolioKeys: []string{"missing"}})
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestService_Verify(t *testing.T) {
	t.Parallel()

	pid := uuid.New()
	store := &MockStore{}
	store.On("SetVerified", mock.Anything, pid, true).Return(&Provider{ID: pid, Verified: true}, nil)
	store.On("SetVerified", mock.Anything, mock.Anything, true).Return(nil, ErrNotFound)
	svc := newService(store, storage.NewMemory(""))

	p, err := svc.Verify(context.Background(), pid, true)
	require.NoError(t, err)
	assert.True(t, p.Verified)

	_, err = svc.Verify(context.Background(), uuid.New(), true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFilter_Normalized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Filter
		want Filter
	}{
		{"defaults", Filter{}, Filter{Limit: defaultLimit}},
		{"capped", Filter{Limit: 1000, Offset: 40}, Filter{Limit: maxLimit, Offset: 40}},
		{"negative offset", Filter{Limit: 5, Offset: -3}, Filter{Limit: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.in.normalized())
		})
	}
}
