package models

import (
	"time"

	"blogsite/internal/blocks"
)

type PageType string

const (
	PageTypeHome       PageType = "home"
	PageTypeBlogIndex  PageType = "blog_index"
	PageTypeBlogDetail PageType = "blog_detail"
)

func (t PageType) Valid() bool {
	switch t {
	case PageTypeHome, PageTypeBlogIndex, PageTypeBlogDetail:
		return true
	}
	return false
}

// Page — одна таблица на все типы страниц; поля, не относящиеся к типу, пустые.
type Page struct {
	ID       int64    `json:"id"`
	Type     PageType `json:"type"`
	ParentID *int64   `json:"parent_id,omitempty"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Subtitle string   `json:"subtitle"`

	// home, blog_index
	BodyHTML string `json:"body_html,omitempty"`
	// blog_detail
	Body blocks.Stream `json:"body"`

	// home
	CTAURL         *int64         `json:"cta_url,omitempty"`
	CTAExternalURL string         `json:"cta_external_url,omitempty"`
	GalleryImages  []GalleryImage `json:"gallery_images,omitempty"`

	// blog_detail
	AuthorID *int64   `json:"author_id,omitempty"`
	Tags     []string `json:"tags,omitempty"`

	Live                  bool       `json:"live"`
	Public                bool       `json:"public"`
	HasUnpublishedChanges bool       `json:"has_unpublished_changes"`
	FirstPublishedAt      *time.Time `json:"first_published_at,omitempty"`
	LastPublishedAt       *time.Time `json:"last_published_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type GalleryImage struct {
	ImageID   int64 `json:"image_id"`
	SortOrder int   `json:"sort_order"`
}

// swagger:model PageRequest
type PageRequest struct {
	Type           PageType       `json:"type"             example:"blog_detail"`
	ParentID       *int64         `json:"parent_id"        example:"2"`
	Title          string         `json:"title"            example:"My first post"`
	Slug           string         `json:"slug"             example:"my-first-post"`
	Subtitle       string         `json:"subtitle"`
	BodyHTML       string         `json:"body_html"`
	Body           blocks.Stream  `json:"body"`
	CTAURL         *int64         `json:"cta_url"`
	CTAExternalURL string         `json:"cta_external_url"`
	GalleryImages  []GalleryImage `json:"gallery_images"`
	AuthorID       *int64         `json:"author_id"`
	Tags           []string       `json:"tags"`
	Public         *bool          `json:"public,omitempty"`
}

// RenderedPage отдаётся фронтенду для шаблона.
type RenderedPage struct {
	Page     *Page             `json:"page"`
	Template string            `json:"template"`
	Blocks   []blocks.Rendered `json:"blocks"`
	BodyHTML string            `json:"body_html,omitempty"`
	Author   *Author           `json:"author,omitempty"`
	Children []blocks.PageInfo `json:"children,omitempty"`
}
