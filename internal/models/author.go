package models

import "time"

// Author — сниппет автора с черновиками, расписанием публикации и блокировкой.
type Author struct {
	ID                    int64      `json:"id"`
	Name                  string     `json:"name"`
	Bio                   string     `json:"bio"`
	Live                  bool       `json:"live"`
	HasUnpublishedChanges bool       `json:"has_unpublished_changes"`
	FirstPublishedAt      *time.Time `json:"first_published_at,omitempty"`
	LastPublishedAt       *time.Time `json:"last_published_at,omitempty"`
	GoLiveAt              *time.Time `json:"go_live_at,omitempty"`
	ExpireAt              *time.Time `json:"expire_at,omitempty"`
	Expired               bool       `json:"expired"`
	Scheduled             bool       `json:"scheduled"`
	Locked                bool       `json:"locked"`
	LockedAt              *time.Time `json:"locked_at,omitempty"`
	LockedBy              *string    `json:"locked_by,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// swagger:model AuthorRequest
type AuthorRequest struct {
	Name     string     `json:"name"      example:"Jane Doe"`
	Bio      string     `json:"bio"       example:"Writes about Go"`
	GoLiveAt *time.Time `json:"go_live_at"`
	ExpireAt *time.Time `json:"expire_at"`
}

type AuthorPreview struct {
	Mode     string  `json:"mode"`
	Template string  `json:"template"`
	Author   *Author `json:"author"`
}
