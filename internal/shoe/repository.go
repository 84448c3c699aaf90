package shoe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/footwear-shop/internal/apperror"
)

var ErrNotFound = fmt.Errorf("shoe %w", apperror.ErrNotFound)

type Repository interface {
	Create(ctx context.Context, shoe *Shoe) error
	GetByID(ctx context.Context, id uuid.UUID) (*Shoe, error)
	List(ctx context.Context, q ListQuery) ([]Shoe, int, error)
	Update(ctx context.Context, shoe *Shoe) error
	Delete(ctx context.Context, id uuid.UUID) error
	All(ctx context.Context) ([]Shoe, error)
	Summary(ctx context.Context, lowStockThreshold int) (*Summary, error)
}

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var shoeColumns = []string{
	"id", "name", "brand", "category", "image", "sizes", "colors",
	"price", "stock", "description", "created_at", "updated_at",
}

var columnByField = map[Field]string{
	FieldName:        "name",
	FieldBrand:       "brand",
	FieldCategory:    "category",
	FieldPrice:       "price",
	FieldStock:       "stock",
	FieldDescription: "description",
	FieldSizes:       "sizes",
	FieldColors:      "colors",
	FieldCreatedAt:   "created_at",
}

type shoeRow struct {
	ID          uuid.UUID      `db:"id"`
	Name        string         `db:"name"`
	Brand       string         `db:"brand"`
	Category    string         `db:"category"`
	Image       string         `db:"image"`
	Sizes       pq.StringArray `db:"sizes"`
	Colors      pq.StringArray `db:"colors"`
	Price       float64        `db:"price"`
	Stock       int            `db:"stock"`
	Description string         `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r shoeRow) toShoe() Shoe {
	return Shoe{
		ID:          r.ID,
		Name:        r.Name,
		Brand:       r.Brand,
		Category:    Category(r.Category),
		Image:       r.Image,
		Sizes:       []string(r.Sizes),
		Colors:      []string(r.Colors),
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, shoe *Shoe) error {
	query, args, err := qb.Insert("shoes").
		Columns(shoeColumns...).
		Values(shoe.ID, shoe.Name, shoe.Brand, string(shoe.Category), shoe.Image,
			pq.StringArray(shoe.Sizes), pq.StringArray(shoe.Colors),
			shoe.Price, shoe.Stock, shoe.Description, shoe.CreatedAt, shoe.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: failed to build insert shoe query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("repository: failed to insert shoe: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Shoe, error) {
	query, args, err := qb.Select(shoeColumns...).From("shoes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build select shoe query: %w", err)
	}

	var row shoeRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select shoe by id %s: %w", id, err)
	}

	s := row.toShoe()
	return &s, nil
}

func (r *postgresRepository) List(ctx context.Context, q ListQuery) ([]Shoe, int, error) {
	where := whereClause(q)

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("shoes").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to build count shoes query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count shoes: %w", err)
	}

	query, args, err := qb.Select(shoeColumns...).
		From("shoes").
		Where(where).
		OrderBy(orderBy(q.Sort)...).
		Limit(uint64(q.Limit)).
		Offset(uint64(q.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to build list shoes query: %w", err)
	}

	var rows []shoeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list shoes: %w", err)
	}

	shoes := make([]Shoe, 0, len(rows))
	for _, row := range rows {
		shoes = append(shoes, row.toShoe())
	}
	return shoes, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, shoe *Shoe) error {
	query, args, err := qb.Update("shoes").
		SetMap(map[string]any{
			"name":        shoe.Name,
			"brand":       shoe.Brand,
			"category":    string(shoe.Category),
			"image":       shoe.Image,
			"sizes":       pq.StringArray(shoe.Sizes),
			"colors":      pq.StringArray(shoe.Colors),
			"price":       shoe.Price,
			"stock":       shoe.Stock,
			"description": shoe.Description,
			"updated_at":  shoe.UpdatedAt,
		}).
		Where(sq.Eq{"id": shoe.ID}).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("repository: failed to build update shoe query: %w", err)
	}

	if err := r.db.GetContext(ctx, &shoe.CreatedAt, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Stringer("shoe_id", shoe.ID).Msg("repository: shoe not found for update")
			return ErrNotFound
		}
		return fmt.Errorf("repository: failed to update shoe %s: %w", shoe.ID, err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := qb.Delete("shoes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("repository: failed to build delete shoe query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("repository: failed to delete shoe %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: failed to read affected rows for shoe %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) All(ctx context.Context) ([]Shoe, error) {
	query, args, err := qb.Select(shoeColumns...).From("shoes").OrderBy("created_at DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build select all shoes query: %w", err)
	}

	var rows []shoeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("repository: failed to select all shoes: %w", err)
	}

	shoes := make([]Shoe, 0, len(rows))
	for _, row := range rows {
		shoes = append(shoes, row.toShoe())
	}
	return shoes, nil
}

func (r *postgresRepository) Summary(ctx context.Context, lowStockThreshold int) (*Summary, error) {
	query, args, err := qb.Select(
		"COUNT(*) AS total_products",
		"COALESCE(SUM(stock), 0) AS total_stock",
		"COALESCE(SUM(price * stock), 0) AS total_value",
		"COUNT(*) FILTER (WHERE stock = 0) AS out_of_stock",
	).
		Column(sq.Expr("COUNT(*) FILTER (WHERE stock > 0 AND stock <= ?) AS low_stock", lowStockThreshold)).
		From("shoes").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to build inventory summary query: %w", err)
	}

	var row struct {
		TotalProducts int     `db:"total_products"`
		TotalStock    int     `db:"total_stock"`
		TotalValue    float64 `db:"total_value"`
		OutOfStock    int     `db:"out_of_stock"`
		LowStock      int     `db:"low_stock"`
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("repository: failed to compute inventory summary: %w", err)
	}

	return &Summary{
		TotalProducts: row.TotalProducts,
		TotalStock:    row.TotalStock,
		TotalValue:    row.TotalValue,
		OutOfStock:    row.OutOfStock,
		LowStock:      row.LowStock,
	}, nil
}

func whereClause(q ListQuery) sq.And {
	where := sq.And{}
	for _, f := range q.Filters {
		col := columnByField[f.Field]
		switch f.Field {
		case FieldSizes, FieldColors:
			where = append(where, sq.Expr(col+" && ?", pq.StringArray(f.Values)))
		default:
			if len(f.Values) == 1 {
				where = append(where, sq.Eq{col: f.Values[0]})
			} else {
				where = append(where, sq.Eq{col: f.Values})
			}
		}
	}
	if len(q.SearchTerms) > 0 {
		where = append(where, sq.Expr("search_vector @@ to_tsquery('simple', ?)", strings.Join(q.SearchTerms, " | ")))
	}
	return where
}

func orderBy(fields []SortField) []string {
	out := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, ok := columnByField[f.Field]
		if !ok {
			continue
		}
		if f.Desc {
			out = append(out, col+" DESC")
		} else {
			out = append(out, col+" ASC")
		}
	}
	return append(out, "id ASC")
}
