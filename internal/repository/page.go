package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogsite/internal/blocks"
	"blogsite/internal/models"
)

var ErrNotFound = errors.New("not found")

// Пустые поля PageFilter не ограничивают выборку.
type PageFilter struct {
	Type       models.PageType
	ParentID   *int64
	Tag        string
	LiveOnly   bool
	PublicOnly bool
	Limit      int
	Offset     int
}

type PageRepo interface {
	Create(ctx context.Context, p *models.Page) (*models.Page, error)
	Update(ctx context.Context, p *models.Page) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	// GetLive и GetLiveBySlug отдают опубликованную версию, а не черновик.
	GetLive(ctx context.Context, id int64) (*models.Page, error)
	GetLiveBySlug(ctx context.Context, slug string) (*models.Page, error)
	// List с LiveOnly отдаёт опубликованные версии.
	List(ctx context.Context, f PageFilter) ([]*models.Page, error)
	// Publish делает снимок p опубликованной версией.
	Publish(ctx context.Context, p *models.Page, at time.Time) error
	Unpublish(ctx context.Context, id int64) error
}

type pageRepo struct{ db *pgxpool.Pool }

func NewPageRepo(db *pgxpool.Pool) PageRepo { return &pageRepo{db: db} }

const pageColumns = `
	p.id, p.page_type, p.parent_id, p.title, p.slug, p.subtitle, p.body_html, p.body,
	p.cta_url, p.cta_external_url, p.author_id, p.live, p.is_public, p.has_unpublished_changes,
	p.first_published_at, p.last_published_at, p.created_at, p.updated_at, p.live_revision,
	COALESCE((
		SELECT jsonb_agg(t.slug ORDER BY t.slug)
		FROM page_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.page_id = p.id
	), '[]'::jsonb) AS tags
`

// pageRevision: содержимое страницы на момент публикации (колонка live_revision).
// Тип, родитель и приватность в снимок не входят.
type pageRevision struct {
	Title          string                `json:"title"`
	Slug           string                `json:"slug"`
	Subtitle       string                `json:"subtitle"`
	BodyHTML       string                `json:"body_html"`
	Body           blocks.Stream         `json:"body"`
	CTAURL         *int64                `json:"cta_url"`
	CTAExternalURL string                `json:"cta_external_url"`
	GalleryImages  []models.GalleryImage `json:"gallery_images"`
	AuthorID       *int64                `json:"author_id"`
	Tags           []string              `json:"tags"`
}

func newPageRevision(p *models.Page) pageRevision {
	return pageRevision{
		Title: p.Title, Slug: p.Slug, Subtitle: p.Subtitle,
		BodyHTML: p.BodyHTML, Body: p.Body,
		CTAURL: p.CTAURL, CTAExternalURL: p.CTAExternalURL, GalleryImages: p.GalleryImages,
		AuthorID: p.AuthorID, Tags: p.Tags,
	}
}

func (rev pageRevision) apply(p *models.Page) {
	p.Title, p.Slug, p.Subtitle = rev.Title, rev.Slug, rev.Subtitle
	p.BodyHTML, p.Body = rev.BodyHTML, rev.Body
	p.CTAURL, p.CTAExternalURL = rev.CTAURL, rev.CTAExternalURL
	p.GalleryImages = rev.GalleryImages
	if p.GalleryImages == nil {
		p.GalleryImages = []models.GalleryImage{}
	}
	p.AuthorID, p.Tags = rev.AuthorID, rev.Tags
}

// scanPage с live=true подставляет снимок опубликованной версии.
// Страница, опубликованная до появления снимков, отдаётся как есть.
func scanPage(row pgx.Row, live bool) (*models.Page, error) {
	var (
		p       models.Page
		bodyRaw []byte
		liveRaw []byte
		tagsRaw []byte
	)
	if err := row.Scan(
		&p.ID, &p.Type, &p.ParentID, &p.Title, &p.Slug, &p.Subtitle, &p.BodyHTML, &bodyRaw,
		&p.CTAURL, &p.CTAExternalURL, &p.AuthorID, &p.Live, &p.Public, &p.HasUnpublishedChanges,
		&p.FirstPublishedAt, &p.LastPublishedAt, &p.CreatedAt, &p.UpdatedAt, &liveRaw, &tagsRaw,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	body, err := blocks.ParseStream(bodyRaw)
	if err != nil {
		return nil, fmt.Errorf("page %d body: %w", p.ID, err)
	}
	p.Body = body
	if err := json.Unmarshal(tagsRaw, &p.Tags); err != nil {
		return nil, fmt.Errorf("page %d tags: %w", p.ID, err)
	}

	if live && liveRaw != nil {
		var rev pageRevision
		if err := json.Unmarshal(liveRaw, &rev); err != nil {
			return nil, fmt.Errorf("page %d live revision: %w", p.ID, err)
		}
		rev.apply(&p)
	}
	return &p, nil
}

func (r *pageRepo) Create(ctx context.Context, p *models.Page) (*models.Page, error) {
	body, err := json.Marshal(p.Body)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
		INSERT INTO pages (page_type, parent_id, title, slug, subtitle, body_html, body,
		                   cta_url, cta_external_url, author_id, is_public)
		VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9,$10,$11)
		RETURNING id
	`
	var id int64
	if err := tx.QueryRow(ctx, q,
		p.Type, p.ParentID, p.Title, p.Slug, p.Subtitle, p.BodyHTML, body,
		p.CTAURL, p.CTAExternalURL, p.AuthorID, p.Public,
	).Scan(&id); err != nil {
		return nil, mapUnique(err)
	}

	if err := replacePageRelations(ctx, tx, id, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *pageRepo) Update(ctx context.Context, p *models.Page) error {
	body, err := json.Marshal(p.Body)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
		UPDATE pages
		SET title=$1, slug=$2, subtitle=$3, body_html=$4, body=$5::jsonb,
		    cta_url=$6, cta_external_url=$7, author_id=$8, is_public=$9,
		    has_unpublished_changes=TRUE, updated_at=NOW()
		WHERE id=$10
	`
	tag, err := tx.Exec(ctx, q,
		p.Title, p.Slug, p.Subtitle, p.BodyHTML, body,
		p.CTAURL, p.CTAExternalURL, p.AuthorID, p.Public, p.ID,
	)
	if err != nil {
		return mapUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := replacePageRelations(ctx, tx, p.ID, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// replacePageRelations перезаписывает галерею и теги страницы.
// Теги, которых ещё нет, создаются по slug.
func replacePageRelations(ctx context.Context, tx pgx.Tx, id int64, p *models.Page) error {
	if _, err := tx.Exec(ctx, `DELETE FROM page_gallery_images WHERE page_id=$1`, id); err != nil {
		return err
	}
	for _, img := range p.GalleryImages {
		if _, err := tx.Exec(ctx,
			`INSERT INTO page_gallery_images (page_id, image_id, sort_order) VALUES ($1,$2,$3)`,
			id, img.ImageID, img.SortOrder,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM page_tags WHERE page_id=$1`, id); err != nil {
		return err
	}
	for _, slug := range p.Tags {
		const q = `
			WITH t AS (
				INSERT INTO tags (name, slug) VALUES ($2, $2)
				ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
				RETURNING id
			)
			INSERT INTO page_tags (page_id, tag_id) SELECT $1, id FROM t
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.Exec(ctx, q, id, slug); err != nil {
			return err
		}
	}
	return nil
}

func (r *pageRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM pages WHERE id=$1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pageRepo) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	p, err := scanPage(r.db.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages p WHERE p.id=$1`, id), false)
	if err != nil {
		return nil, err
	}
	if err := r.loadGallery(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pageRepo) GetLive(ctx context.Context, id int64) (*models.Page, error) {
	const q = `SELECT ` + pageColumns + ` FROM pages p WHERE p.id=$1 AND p.live`
	return r.getLive(ctx, q, id)
}

func (r *pageRepo) GetLiveBySlug(ctx context.Context, slug string) (*models.Page, error) {
	const q = `
		SELECT ` + pageColumns + ` FROM pages p
		WHERE p.live AND COALESCE(p.live_revision->>'slug', p.slug) = $1
		ORDER BY p.id LIMIT 1
	`
	return r.getLive(ctx, q, slug)
}

func (r *pageRepo) getLive(ctx context.Context, q string, arg any) (*models.Page, error) {
	p, err := scanPage(r.db.QueryRow(ctx, q, arg), true)
	if err != nil {
		return nil, err
	}
	if p.GalleryImages == nil {
		if err := r.loadGallery(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *pageRepo) loadGallery(ctx context.Context, p *models.Page) error {
	rows, err := r.db.Query(ctx,
		`SELECT image_id, sort_order FROM page_gallery_images WHERE page_id=$1 ORDER BY sort_order, id`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var img models.GalleryImage
		if err := rows.Scan(&img.ImageID, &img.SortOrder); err != nil {
			return err
		}
		p.GalleryImages = append(p.GalleryImages, img)
	}
	return rows.Err()
}

func (r *pageRepo) List(ctx context.Context, f PageFilter) ([]*models.Page, error) {
	where := []string{}
	args := []interface{}{}
	i := 1

	if f.Type != "" {
		where = append(where, fmt.Sprintf("p.page_type = $%d", i))
		args = append(args, f.Type)
		i++
	}
	if f.ParentID != nil {
		where = append(where, fmt.Sprintf("p.parent_id = $%d", i))
		args = append(args, *f.ParentID)
		i++
	}
	if f.LiveOnly {
		where = append(where, "p.live")
	}
	if f.PublicOnly {
		where = append(where, "p.is_public")
	}
	if f.Tag != "" && f.LiveOnly {
		// теги опубликованной версии
		where = append(where, fmt.Sprintf(`
			CASE WHEN p.live_revision IS NOT NULL
			     THEN p.live_revision->'tags' ? $%[1]d
			     ELSE EXISTS (
			         SELECT 1 FROM page_tags pt JOIN tags t ON t.id = pt.tag_id
			         WHERE pt.page_id = p.id AND t.slug = $%[1]d
			     )
			END
		`, i))
		args = append(args, f.Tag)
		i++
	} else if f.Tag != "" {
		where = append(where, fmt.Sprintf(`
			EXISTS (
				SELECT 1 FROM page_tags pt JOIN tags t ON t.id = pt.tag_id
				WHERE pt.page_id = p.id AND t.slug = $%d
			)
		`, i))
		args = append(args, f.Tag)
		i++
	}

	sql := `SELECT ` + pageColumns + ` FROM pages p`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY p.first_published_at DESC NULLS LAST, p.id DESC"
	if f.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", i, i+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*models.Page
	for rows.Next() {
		p, err := scanPage(rows, f.LiveOnly)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pageRepo) Publish(ctx context.Context, p *models.Page, at time.Time) error {
	rev, err := json.Marshal(newPageRevision(p))
	if err != nil {
		return err
	}
	const q = `
		UPDATE pages
		SET live = TRUE,
		    live_revision = $2::jsonb,
		    has_unpublished_changes = FALSE,
		    first_published_at = COALESCE(first_published_at, $3),
		    last_published_at = $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, q, p.ID, rev, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Unpublish убирает опубликованную версию; черновик остаётся.
func (r *pageRepo) Unpublish(ctx context.Context, id int64) error {
	const q = `
		UPDATE pages
		SET live = FALSE, live_revision = NULL, has_unpublished_changes = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
