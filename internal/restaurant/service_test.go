package restaurant

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"foodhub-be/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *Restaurant) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Restaurant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Restaurant), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Restaurant), args.Error(1)
}

func (m *MockRepository) IDByOwner(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, ownerID uuid.UUID, in Input, imageURL *string) (*Restaurant, error) {
	args := m.Called(ctx, ownerID, in, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Restaurant), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, p SearchParams) ([]Restaurant, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Restaurant), args.Error(1)
}

func (m *MockRepository) AddMenu(ctx context.Context, ownerID uuid.UUID, menu *Menu) error {
	return m.Called(ctx, ownerID, menu).Error(0)
}

func (m *MockRepository) UpdateMenu(ctx context.Context, ownerID, menuID uuid.UUID, u MenuUpdate) (*Menu, error) {
	args := m.Called(ctx, ownerID, menuID, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Menu), args.Error(1)
}

func (m *MockRepository) ListMenus(ctx context.Context, restaurantID uuid.UUID) ([]Menu, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Menu), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, folder string, f storage.File) (string, error) {
	args := m.Called(ctx, folder, f)
	return args.String(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, id uuid.UUID) (*Restaurant, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*Restaurant), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, r *Restaurant) {
	m.Called(ctx, r)
}

func (m *MockCache) Invalidate(ctx context.Context, id uuid.UUID) {
	m.Called(ctx, id)
}

func image() *storage.File {
	return &storage.File{Name: "banner.jpg", ContentType: "image/jpeg", Body: bytes.NewBufferString("jpg")}
}

func validInput() Input {
	return Input{Name: " Spice Hub ", City: "Delhi", Country: "India", DeliveryTime: 30, Cuisines: []string{"Biryani", "thai", "biryani"}}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo, up := new(MockRepository), new(MockUploader)
		svc := NewService(repo, nil, up)
		img := image()

		repo.On("IDByOwner", ctx, owner).Return(uuid.Nil, ErrRestaurantNotFound)
		up.On("Upload", ctx, "restaurants", *img).Return("http://img", nil)
		repo.On("Create", ctx, mock.AnythingOfType("*restaurant.Restaurant")).Return(nil)

		r, err := svc.Create(ctx, owner, validInput(), img)

		require.NoError(t, err)
		assert.Equal(t, "Spice Hub", r.Name)
		assert.Equal(t, []string{"biryani", "thai"}, r.Cuisines)
		assert.Equal(t, "http://img", r.ImageURL)
		assert.Equal(t, owner, r.UserID)
	})

	t.Run("OwnerAlreadyHasOne", func(t *testing.T) {
		repo, up := new(MockRepository), new(MockUploader)
		svc := NewService(repo, nil, up)
		repo.On("IDByOwner", ctx, owner).Return(uuid.New(), nil)

		_, err := svc.Create(ctx, owner, validInput(), image())

		assert.ErrorIs(t, err, ErrRestaurantExists)
		up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentCreateLosesOnUniqueIndex", func(t *testing.T) {
		repo, up := new(MockRepository), new(MockUploader)
		svc := NewService(repo, nil, up)
		repo.On("IDByOwner", ctx, owner).Return(uuid.Nil, ErrRestaurantNotFound)
		up.On("Upload", ctx, "restaurants", mock.Anything).Return("http://img", nil)
		repo.On("Create", ctx, mock.Anything).Return(ErrRestaurantExists)

		_, err := svc.Create(ctx, owner, validInput(), image())

		assert.ErrorIs(t, err, ErrRestaurantExists)
	})

	t.Run("ImageRequired", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, new(MockUploader))
		repo.On("IDByOwner", ctx, owner).Return(uuid.Nil, ErrRestaurantNotFound)

		_, err := svc.Create(ctx, owner, validInput(), nil)

		assert.ErrorIs(t, err, ErrImageRequired)
	})

	t.Run("CuisinesRequired", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, new(MockUploader))
		in := validInput()
		in.Cuisines = []string{" ", ""}

		_, err := svc.Create(ctx, owner, in, image())

		assert.ErrorIs(t, err, ErrCuisinesRequired)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	owner, id := uuid.New(), uuid.New()

	t.Run("InvalidatesCache", func(t *testing.T) {
		repo, cache := new(MockRepository), new(MockCache)
		svc := NewService(repo, cache, new(MockUploader))

		repo.On("IDByOwner", ctx, owner).Return(id, nil)
		repo.On("Update", ctx, owner, mock.AnythingOfType("restaurant.Input"), (*string)(nil)).Return(&Restaurant{ID: id}, nil)
		cache.On("Invalidate", ctx, id).Return()

		_, err := svc.Update(ctx, owner, validInput(), nil)

		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("NoRestaurant", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, new(MockUploader))
		repo.On("IDByOwner", ctx, owner).Return(uuid.Nil, ErrRestaurantNotFound)

		_, err := svc.Update(ctx, owner, validInput(), nil)

		assert.ErrorIs(t, err, ErrRestaurantNotFound)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("CacheHitSkipsDb", func(t *testing.T) {
		repo, cache := new(MockRepository), new(MockCache)
		svc := NewService(repo, cache, nil)
		cache.On("Get", ctx, id).Return(&Restaurant{ID: id, Name: "cached"}, true)

		r, err := svc.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "cached", r.Name)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("CacheMissFillsCache", func(t *testing.T) {
		repo, cache := new(MockRepository), new(MockCache)
		svc := NewService(repo, cache, nil)
		stored := &Restaurant{ID: id, Name: "db"}
		cache.On("Get", ctx, id).Return(nil, false)
		repo.On("GetByID", ctx, id).Return(stored, nil)
		cache.On("Set", ctx, stored).Return()

		r, err := svc.GetByID(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "db", r.Name)
		cache.AssertExpectations(t)
	})

	t.Run("NotFoundIsNotCached", func(t *testing.T) {
		repo, cache := new(MockRepository), new(MockCache)
		svc := NewService(repo, cache, nil)
		cache.On("Get", ctx, id).Return(nil, false)
		repo.On("GetByID", ctx, id).Return(nil, ErrRestaurantNotFound)

		_, err := svc.GetByID(ctx, id)

		assert.ErrorIs(t, err, ErrRestaurantNotFound)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil)

	want := SearchParams{SearchText: "delhi", Cuisines: []string{"biryani"}}
	repo.On("Search", ctx, want).Return([]Restaurant{{Name: "Biryani House", Cuisines: []string{"biryani"}}}, nil)

	got, err := svc.Search(ctx, SearchParams{SearchText: " delhi ", Cuisines: []string{" Biryani "}})

	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestService_AddMenu(t *testing.T) {
	ctx := context.Background()
	owner, restaurantID := uuid.New(), uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo, cache, up := new(MockRepository), new(MockCache), new(MockUploader)
		svc := NewService(repo, cache, up)
		img := image()

		repo.On("IDByOwner", ctx, owner).Return(restaurantID, nil)
		up.On("Upload", ctx, "menus", *img).Return("http://menu", nil)
		repo.On("AddMenu", ctx, owner, mock.MatchedBy(func(m *Menu) bool {
			return m.Name == "Biryani" && m.Price == 250 && m.ImageURL == "http://menu"
		})).Return(nil)
		cache.On("Invalidate", ctx, restaurantID).Return()

		m, err := svc.AddMenu(ctx, owner, MenuInput{Name: "Biryani", Description: "Rice", Price: 250}, img)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("OwnerWithoutRestaurant", func(t *testing.T) {
		repo, up := new(MockRepository), new(MockUploader)
		svc := NewService(repo, nil, up)
		repo.On("IDByOwner", ctx, owner).Return(uuid.Nil, ErrRestaurantNotFound)

		_, err := svc.AddMenu(ctx, owner, MenuInput{Name: "x", Price: 1}, image())

		assert.ErrorIs(t, err, ErrRestaurantNotFound)
		up.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InvalidPrice", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil)
		_, err := svc.AddMenu(ctx, owner, MenuInput{Name: "x", Price: 0}, image())
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("PriceAboveMax", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil)
		_, err := svc.AddMenu(ctx, owner, MenuInput{Name: "x", Price: MaxPrice + 1}, image())
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("ImageRequired", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil)
		_, err := svc.AddMenu(ctx, owner, MenuInput{Name: "x", Price: 10}, nil)
		assert.ErrorIs(t, err, ErrImageRequired)
	})
}

func TestService_EditMenu(t *testing.T) {
	ctx := context.Background()
	owner, menuID, restaurantID := uuid.New(), uuid.New(), uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo, cache := new(MockRepository), new(MockCache)
		svc := NewService(repo, cache, nil)
		name := "Veg Biryani"

		repo.On("UpdateMenu", ctx, owner, menuID, MenuUpdate{Name: &name}).
			Return(&Menu{ID: menuID, RestaurantID: restaurantID, Name: name}, nil)
		cache.On("Invalidate", ctx, restaurantID).Return()

		m, err := svc.EditMenu(ctx, owner, menuID, MenuUpdate{Name: &name}, nil)

		require.NoError(t, err)
		assert.Equal(t, name, m.Name)
		cache.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, nil)
		repo.On("UpdateMenu", ctx, owner, menuID, MenuUpdate{}).Return(nil, ErrMenuNotFound)

		_, err := svc.EditMenu(ctx, owner, menuID, MenuUpdate{}, nil)

		assert.ErrorIs(t, err, ErrMenuNotFound)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil)
		price := int64(-5)
		_, err := svc.EditMenu(ctx, owner, menuID, MenuUpdate{Price: &price}, nil)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("PriceAboveMax", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil, nil)
		price := int64(MaxPrice + 1)
		_, err := svc.EditMenu(ctx, owner, menuID, MenuUpdate{Price: &price}, nil)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("UploadFailure", func(t *testing.T) {
		up := new(MockUploader)
		svc := NewService(new(MockRepository), nil, up)
		up.On("Upload", ctx, "menus", mock.Anything).Return("", errors.New("disk full"))

		_, err := svc.EditMenu(ctx, owner, menuID, MenuUpdate{}, image())

		assert.Error(t, err)
	})
}

func TestService_MenusForCheckout(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	repo := new(MockRepository)
	svc := NewService(repo, nil, nil)
	repo.On("GetByID", ctx, id).Return(&Restaurant{ID: id, Menus: []Menu{{Name: "Biryani"}}}, nil)

	menus, err := svc.MenusForCheckout(ctx, id)

	require.NoError(t, err)
	assert.Len(t, menus, 1)
}
