package restaurant

import (
	"context"
	"errors"
	"strings"

	"foodhub-be/internal/logger"
	"foodhub-be/internal/storage"
	"foodhub-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, in Input, image *storage.File) (*Restaurant, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Restaurant, error)
	Update(ctx context.Context, ownerID uuid.UUID, in Input, image *storage.File) (*Restaurant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	Search(ctx context.Context, p SearchParams) ([]Restaurant, error)
	AddMenu(ctx context.Context, ownerID uuid.UUID, in MenuInput, image *storage.File) (*Menu, error)
	EditMenu(ctx context.Context, ownerID, menuID uuid.UUID, in MenuUpdate, image *storage.File) (*Menu, error)
	MenusForCheckout(ctx context.Context, restaurantID uuid.UUID) ([]Menu, error)
	OwnedRestaurantID(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error)
}

type service struct {
	repo     Repository
	cache    Cache
	uploader storage.Uploader
}

func NewService(repo Repository, cache Cache, uploader storage.Uploader) Service {
	if cache == nil {
		cache = NewNopCache()
	}
	return &service{repo: repo, cache: cache, uploader: uploader}
}

func normalizeInput(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	in.Country = strings.TrimSpace(in.Country)
	in.Cuisines = utils.NormalizeList(in.Cuisines)
	if len(in.Cuisines) == 0 {
		return in, ErrCuisinesRequired
	}
	return in, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, in Input, image *storage.File) (*Restaurant, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("user_id", ownerID.String()),
	)

	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	// Cheap pre-check so an existing owner does not trigger an upload. The
	// unique index on user_id is what actually enforces one per owner.
	if _, err := s.repo.IDByOwner(ctx, ownerID); err == nil {
		return nil, ErrRestaurantExists
	} else if !errors.Is(err, ErrRestaurantNotFound) {
		return nil, err
	}

	if image == nil {
		return nil, ErrImageRequired
	}
	imageURL, err := s.uploader.Upload(ctx, "restaurants", *image)
	if err != nil {
		return nil, err
	}

	r := &Restaurant{
		ID:           uuid.New(),
		UserID:       ownerID,
		Name:         in.Name,
		City:         in.City,
		Country:      in.Country,
		DeliveryTime: in.DeliveryTime,
		Cuisines:     in.Cuisines,
		ImageURL:     imageURL,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, ErrRestaurantExists) {
			log.Info("concurrent restaurant creation rejected by unique index")
		}
		return nil, err
	}

	log.Info("restaurant created", zap.String("restaurant_id", r.ID.String()))
	return r, nil
}

func (s *service) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Restaurant, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *service) Update(ctx context.Context, ownerID uuid.UUID, in Input, image *storage.File) (*Restaurant, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.IDByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	if image != nil {
		url, err := s.uploader.Upload(ctx, "restaurants", *image)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	r, err := s.repo.Update(ctx, ownerID, in, imageURL)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	return r, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	if r, ok := s.cache.Get(ctx, id); ok {
		return r, nil
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, r)
	return r, nil
}

func (s *service) Search(ctx context.Context, p SearchParams) ([]Restaurant, error) {
	p.SearchText = strings.TrimSpace(p.SearchText)
	p.SearchQuery = strings.TrimSpace(p.SearchQuery)
	p.Cuisines = utils.NormalizeList(p.Cuisines)
	return s.repo.Search(ctx, p)
}

func (s *service) AddMenu(ctx context.Context, ownerID uuid.UUID, in MenuInput, image *storage.File) (*Menu, error) {
	if in.Price <= 0 || in.Price > MaxPrice {
		return nil, ErrInvalidPrice
	}
	if image == nil {
		return nil, ErrImageRequired
	}

	restaurantID, err := s.repo.IDByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.uploader.Upload(ctx, "menus", *image)
	if err != nil {
		return nil, err
	}

	m := &Menu{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		ImageURL:    imageURL,
	}
	if err := s.repo.AddMenu(ctx, ownerID, m); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, restaurantID)
	return m, nil
}

func (s *service) EditMenu(ctx context.Context, ownerID, menuID uuid.UUID, in MenuUpdate, image *storage.File) (*Menu, error) {
	if in.Price != nil && (*in.Price <= 0 || *in.Price > MaxPrice) {
		return nil, ErrInvalidPrice
	}

	if image != nil {
		url, err := s.uploader.Upload(ctx, "menus", *image)
		if err != nil {
			return nil, err
		}
		in.ImageURL = &url
	}

	m, err := s.repo.UpdateMenu(ctx, ownerID, menuID, in)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, m.RestaurantID)
	return m, nil
}

func (s *service) MenusForCheckout(ctx context.Context, restaurantID uuid.UUID) ([]Menu, error) {
	r, err := s.repo.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return r.Menus, nil
}

func (s *service) OwnedRestaurantID(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	return s.repo.IDByOwner(ctx, ownerID)
}
