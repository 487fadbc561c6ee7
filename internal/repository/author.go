package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogsite/internal/models"
)

type AuthorRepo interface {
	Create(ctx context.Context, a *models.Author) (*models.Author, error)
	Update(ctx context.Context, a *models.Author) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Author, error)
	// GetLive отдаёт опубликованную версию автора.
	GetLive(ctx context.Context, id int64) (*models.Author, error)
	// List с liveOnly отдаёт опубликованные версии.
	List(ctx context.Context, liveOnly bool) ([]*models.Author, error)
	// Publish делает снимок a опубликованной версией и снимает расписание.
	Publish(ctx context.Context, a *models.Author, at time.Time) error
	// Unpublish снимает с публикации и отменяет запланированную публикацию.
	Unpublish(ctx context.Context, id int64) error
	// Schedule запоминает снимок a для публикации в go_live_at.
	Schedule(ctx context.Context, a *models.Author) error
	// PublishScheduled публикует запомненный Schedule снимок.
	PublishScheduled(ctx context.Context, id int64, at time.Time) error
	SetLock(ctx context.Context, id int64, lockedBy *string, at time.Time) error
	// DueForPublish возвращает запланированных авторов с go_live_at <= now.
	DueForPublish(ctx context.Context, now time.Time) ([]int64, error)
	// ExpireDue снимает с публикации авторов с expire_at <= now и возвращает их id.
	ExpireDue(ctx context.Context, now time.Time) ([]int64, error)
}

type authorRepo struct{ db *pgxpool.Pool }

func NewAuthorRepo(db *pgxpool.Pool) AuthorRepo { return &authorRepo{db: db} }

const authorColumns = `
	id, name, bio, live, has_unpublished_changes, first_published_at, last_published_at,
	go_live_at, expire_at, expired, scheduled_revision IS NOT NULL, locked, locked_at, locked_by,
	created_at, updated_at, live_revision
`

// authorRevision: опубликованное или запланированное содержимое автора.
// GoLiveAt есть только у запланированного снимка.
type authorRevision struct {
	Name     string     `json:"name"`
	Bio      string     `json:"bio"`
	GoLiveAt *time.Time `json:"go_live_at,omitempty"`
}

func newAuthorRevision(a *models.Author, goLiveAt *time.Time) ([]byte, error) {
	return json.Marshal(authorRevision{Name: a.Name, Bio: a.Bio, GoLiveAt: goLiveAt})
}

// scanAuthor с live=true подставляет опубликованную версию.
func scanAuthor(row pgx.Row, live bool) (*models.Author, error) {
	var (
		a       models.Author
		liveRaw []byte
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.Bio, &a.Live, &a.HasUnpublishedChanges, &a.FirstPublishedAt, &a.LastPublishedAt,
		&a.GoLiveAt, &a.ExpireAt, &a.Expired, &a.Scheduled, &a.Locked, &a.LockedAt, &a.LockedBy,
		&a.CreatedAt, &a.UpdatedAt, &liveRaw,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if live && liveRaw != nil {
		var rev authorRevision
		if err := json.Unmarshal(liveRaw, &rev); err != nil {
			return nil, fmt.Errorf("author %d live revision: %w", a.ID, err)
		}
		a.Name, a.Bio = rev.Name, rev.Bio
	}
	return &a, nil
}

func (r *authorRepo) Create(ctx context.Context, a *models.Author) (*models.Author, error) {
	const q = `
		INSERT INTO authors (name, bio, go_live_at, expire_at)
		VALUES ($1,$2,$3,$4)
		RETURNING ` + authorColumns
	return scanAuthor(r.db.QueryRow(ctx, q, a.Name, a.Bio, a.GoLiveAt, a.ExpireAt), false)
}

func (r *authorRepo) Update(ctx context.Context, a *models.Author) error {
	const q = `
		UPDATE authors
		SET name=$1, bio=$2, go_live_at=$3, expire_at=$4,
		    expired = CASE WHEN $4::timestamptz IS NULL OR $4 > NOW() THEN FALSE ELSE expired END,
		    has_unpublished_changes=TRUE, updated_at=NOW()
		WHERE id=$5
	`
	tag, err := r.db.Exec(ctx, q, a.Name, a.Bio, a.GoLiveAt, a.ExpireAt, a.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authorRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authorRepo) GetByID(ctx context.Context, id int64) (*models.Author, error) {
	return scanAuthor(r.db.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id=$1`, id), false)
}

func (r *authorRepo) GetLive(ctx context.Context, id int64) (*models.Author, error) {
	return scanAuthor(r.db.QueryRow(ctx, `SELECT `+authorColumns+` FROM authors WHERE id=$1 AND live`, id), true)
}

func (r *authorRepo) List(ctx context.Context, liveOnly bool) ([]*models.Author, error) {
	q := `SELECT ` + authorColumns + ` FROM authors`
	if liveOnly {
		q += ` WHERE live`
	}
	q += ` ORDER BY name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Author
	for rows.Next() {
		a, err := scanAuthor(rows, liveOnly)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *authorRepo) Publish(ctx context.Context, a *models.Author, at time.Time) error {
	rev, err := newAuthorRevision(a, nil)
	if err != nil {
		return err
	}
	const q = `
		UPDATE authors
		SET live = TRUE,
		    live_revision = $2::jsonb,
		    scheduled_revision = NULL,
		    go_live_at = NULL,
		    expired = FALSE,
		    has_unpublished_changes = FALSE,
		    first_published_at = COALESCE(first_published_at, $3),
		    last_published_at = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, q, a.ID, rev, at)
}

func (r *authorRepo) Unpublish(ctx context.Context, id int64) error {
	const q = `
		UPDATE authors
		SET live = FALSE, live_revision = NULL, scheduled_revision = NULL,
		    has_unpublished_changes = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, q, id)
}

func (r *authorRepo) Schedule(ctx context.Context, a *models.Author) error {
	if a.GoLiveAt == nil {
		return fmt.Errorf("author %d: schedule without go_live_at", a.ID)
	}
	rev, err := newAuthorRevision(a, a.GoLiveAt)
	if err != nil {
		return err
	}
	return r.exec(ctx, `UPDATE authors SET scheduled_revision = $2::jsonb, updated_at = NOW() WHERE id = $1`, a.ID, rev)
}

// PublishScheduled: черновик, изменённый после Schedule, остаётся неопубликованным.
func (r *authorRepo) PublishScheduled(ctx context.Context, id int64, at time.Time) error {
	const q = `
		UPDATE authors
		SET live = TRUE,
		    live_revision = scheduled_revision - 'go_live_at',
		    scheduled_revision = NULL,
		    go_live_at = NULL,
		    expired = FALSE,
		    has_unpublished_changes = (scheduled_revision->>'name' IS DISTINCT FROM name
		                               OR scheduled_revision->>'bio' IS DISTINCT FROM bio),
		    first_published_at = COALESCE(first_published_at, $2),
		    last_published_at = $2,
		    updated_at = NOW()
		WHERE id = $1 AND scheduled_revision IS NOT NULL
	`
	return r.exec(ctx, q, id, at)
}

func (r *authorRepo) exec(ctx context.Context, q string, args ...any) error {
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLock: lockedBy == nil снимает блокировку.
func (r *authorRepo) SetLock(ctx context.Context, id int64, lockedBy *string, at time.Time) error {
	const q = `
		UPDATE authors
		SET locked = $2::text IS NOT NULL,
		    locked_by = $2,
		    locked_at = CASE WHEN $2::text IS NOT NULL THEN $3 ELSE NULL END
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, q, id, lockedBy, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authorRepo) DueForPublish(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM authors WHERE (scheduled_revision->>'go_live_at')::timestamptz <= $1 ORDER BY id`, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *authorRepo) ExpireDue(ctx context.Context, now time.Time) ([]int64, error) {
	const q = `
		UPDATE authors
		SET live = FALSE, expired = TRUE, updated_at = NOW()
		WHERE live AND expire_at IS NOT NULL AND expire_at <= $1
		RETURNING id
	`
	rows, err := r.db.Query(ctx, q, now)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
