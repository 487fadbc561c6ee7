package services

import (
	"context"
	"testing"

	"blogsite/internal/blocks"
	"blogsite/internal/models"
	"blogsite/internal/richtext"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagService_CreateGeneratesSlug(t *testing.T) {
	svc := NewTagService(&mockTagRepo{tags: map[int64]models.Tag{}})

	tag, err := svc.Create(context.Background(), &models.Tag{Name: " Café Society "})
	require.NoError(t, err)
	assert.Equal(t, "Café Society", tag.Name)
	assert.Equal(t, "cafe-society", tag.Slug)
	assert.NotZero(t, tag.ID)
}

func TestTagService_DuplicateSlug(t *testing.T) {
	svc := NewTagService(&mockTagRepo{tags: map[int64]models.Tag{}})
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Tag{Name: "Go"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, &models.Tag{Name: "GO"})
	assert.Equal(t, MsgTagSlugTaken, fieldMsg(t, err, "slug"))
}

func TestTagService_Validation(t *testing.T) {
	svc := NewTagService(&mockTagRepo{tags: map[int64]models.Tag{}})

	_, err := svc.Create(context.Background(), &models.Tag{Name: "", Slug: "Bad Slug"})
	fields := fieldErrors(t, err)
	assert.Equal(t, blocks.MsgRequired, fields["name"].Error())
	assert.Equal(t, MsgBadSlug, fields["slug"].Error())
}

func TestSiteService(t *testing.T) {
	svc := NewSiteService(richtext.DefaultFormats())

	perms := svc.Permissions()
	require.Len(t, perms, 1)
	assert.Equal(t, "can_edit_author_name", perms[0].Codename)

	defs := svc.Blocks()
	require.Len(t, defs, 10)
	assert.Equal(t, blocks.TypeText, defs[0].Type)

	formats := svc.ImageFormats()
	require.Len(t, formats, 1)
	assert.Equal(t, "thumbnail", formats[0].Name)
}
