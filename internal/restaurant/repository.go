package restaurant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"foodhub-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, r *Restaurant) error
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Restaurant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	IDByOwner(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error)
	Update(ctx context.Context, ownerID uuid.UUID, in Input, imageURL *string) (*Restaurant, error)
	Search(ctx context.Context, p SearchParams) ([]Restaurant, error)
	AddMenu(ctx context.Context, ownerID uuid.UUID, m *Menu) error
	UpdateMenu(ctx context.Context, ownerID, menuID uuid.UUID, u MenuUpdate) (*Menu, error)
	ListMenus(ctx context.Context, restaurantID uuid.UUID) ([]Menu, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const restaurantColumns = `id, user_id, name, city, country, delivery_time, cuisines, image_url, created_at, updated_at`

const menuColumns = `id, restaurant_id, position, name, description, price, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*Restaurant, error) {
	var r Restaurant
	err := row.Scan(
		&r.ID, &r.UserID, &r.Name, &r.City, &r.Country, &r.DeliveryTime,
		pq.Array(&r.Cuisines), &r.ImageURL, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	r.Menus = []Menu{}
	return &r, nil
}

func scanMenu(row rowScanner) (*Menu, error) {
	var m Menu
	err := row.Scan(
		&m.ID, &m.RestaurantID, &m.Position, &m.Name, &m.Description,
		&m.Price, &m.ImageURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) Create(ctx context.Context, rest *Restaurant) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO restaurants (id, user_id, name, city, country, delivery_time, cuisines, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`,
		rest.ID, rest.UserID, rest.Name, rest.City, rest.Country,
		rest.DeliveryTime, pq.Array(rest.Cuisines), rest.ImageURL,
	).Scan(&rest.CreatedAt, &rest.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrRestaurantExists
		}
		log.Error("db: failed to insert restaurant", zap.String("user_id", rest.UserID.String()), zap.Error(err))
		return fmt.Errorf("insert restaurant: %w", err)
	}

	rest.Menus = []Menu{}
	return nil
}

func (r *repository) withMenus(ctx context.Context, rest *Restaurant, err error) (*Restaurant, error) {
	if err != nil {
		return nil, err
	}
	menus, err := r.ListMenus(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	rest.Menus = menus
	return rest, nil
}

func (r *repository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE user_id = $1`, ownerID))
	return r.withMenus(ctx, rest, err)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	return r.withMenus(ctx, rest, err)
}

func (r *repository) IDByOwner(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `SELECT id FROM restaurants WHERE user_id = $1`, ownerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrRestaurantNotFound
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, ownerID uuid.UUID, in Input, imageURL *string) (*Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx, `
		UPDATE restaurants SET
			name          = $2,
			city          = $3,
			country       = $4,
			delivery_time = $5,
			cuisines      = $6,
			image_url     = COALESCE($7, image_url),
			updated_at    = now()
		WHERE user_id = $1
		RETURNING `+restaurantColumns,
		ownerID, in.Name, in.City, in.Country, in.DeliveryTime, pq.Array(in.Cuisines), imageURL,
	))
	if err != nil && !errors.Is(err, ErrRestaurantNotFound) {
		logger.FromCtx(ctx).Error("db: failed to update restaurant",
			zap.String("layer", "repository"),
			zap.String("method", "Update"),
			zap.Error(err),
		)
	}
	return r.withMenus(ctx, rest, err)
}

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func buildSearch(p SearchParams) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if p.SearchText != "" {
		args = append(args, "%"+escapeLike(p.SearchText)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR city ILIKE $%d OR country ILIKE $%d)", n, n, n))
	}

	if p.SearchQuery != "" {
		args = append(args, "%"+escapeLike(p.SearchQuery)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(cuisines) c WHERE c ILIKE $%d))", n, n))
	}

	if len(p.Cuisines) > 0 {
		args = append(args, pq.Array(p.Cuisines))
		conds = append(conds, fmt.Sprintf("cuisines && $%d", len(args)))
	}

	query := `SELECT ` + restaurantColumns + ` FROM restaurants`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	return query, args
}

func (r *repository) Search(ctx context.Context, p SearchParams) ([]Restaurant, error) {
	query, args := buildSearch(p)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("db: restaurant search failed",
			zap.String("layer", "repository"),
			zap.String("method", "Search"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	defer rows.Close()

	out := []Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rest)
	}
	return out, rows.Err()
}

// AddMenu locks the owner's restaurant row so concurrent adds get distinct
// positions, then inserts the menu in the same transaction.
func (r *repository) AddMenu(ctx context.Context, ownerID uuid.UUID, m *Menu) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddMenu"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var restaurantID uuid.UUID
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM restaurants WHERE user_id = $1 FOR UPDATE`, ownerID,
	).Scan(&restaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRestaurantNotFound
		}
		return err
	}

	var position int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM menus WHERE restaurant_id = $1`, restaurantID,
	).Scan(&position)
	if err != nil {
		return err
	}

	m.RestaurantID = restaurantID
	m.Position = position
	err = tx.QueryRowContext(ctx, `
		INSERT INTO menus (id, restaurant_id, position, name, description, price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`,
		m.ID, m.RestaurantID, m.Position, m.Name, m.Description, m.Price, m.ImageURL,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		log.Error("db: failed to insert menu", zap.String("restaurant_id", restaurantID.String()), zap.Error(err))
		return fmt.Errorf("insert menu: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Info("menu added",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("menu_id", m.ID.String()),
		zap.Int("position", position),
	)
	return nil
}

func (r *repository) UpdateMenu(ctx context.Context, ownerID, menuID uuid.UUID, u MenuUpdate) (*Menu, error) {
	return scanMenu(r.db.QueryRowContext(ctx, `
		UPDATE menus m SET
			name        = COALESCE($3, m.name),
			description = COALESCE($4, m.description),
			price       = COALESCE($5, m.price),
			image_url   = COALESCE($6, m.image_url),
			updated_at  = now()
		FROM restaurants r
		WHERE m.id = $1 AND m.restaurant_id = r.id AND r.user_id = $2
		RETURNING m.id, m.restaurant_id, m.position, m.name, m.description,
			m.price, m.image_url, m.created_at, m.updated_at
	`,
		menuID, ownerID, u.Name, u.Description, u.Price, u.ImageURL,
	))
}

func (r *repository) ListMenus(ctx context.Context, restaurantID uuid.UUID) ([]Menu, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+menuColumns+` FROM menus WHERE restaurant_id = $1 ORDER BY position`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	menus := []Menu{}
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}
