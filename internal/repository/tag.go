package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogsite/internal/models"
)

// ErrConflict: нарушена уникальность (например, slug тега уже занят).
var ErrConflict = errors.New("conflict")

type TagRepo interface {
	Create(ctx context.Context, t *models.Tag) (int64, error)
	Update(ctx context.Context, t *models.Tag) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	Search(ctx context.Context, q string) ([]models.Tag, error)
}

type tagRepo struct{ db *pgxpool.Pool }

func NewTagRepo(db *pgxpool.Pool) TagRepo { return &tagRepo{db: db} }

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

func (r *tagRepo) Create(ctx context.Context, t *models.Tag) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO tags (name, slug) VALUES ($1,$2) RETURNING id`, t.Name, t.Slug,
	).Scan(&id)
	return id, mapUnique(err)
}

func (r *tagRepo) Update(ctx context.Context, t *models.Tag) error {
	tag, err := r.db.Exec(ctx, `UPDATE tags SET name=$1, slug=$2 WHERE id=$3`, t.Name, t.Slug, t.ID)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tagRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tags WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tagRepo) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	var t models.Tag
	err := r.db.QueryRow(ctx, `SELECT id, name, slug FROM tags WHERE id=$1`, id).Scan(&t.ID, &t.Name, &t.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Search ищет по подстроке в имени, пустой запрос отдаёт все теги.
func (r *tagRepo) Search(ctx context.Context, q string) ([]models.Tag, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, slug FROM tags WHERE $1 = '' OR name ILIKE '%' || $1 || '%' ORDER BY name, id`, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[models.Tag])
}
