package services

import (
	"context"
	"errors"
	"strings"

	"blogsite/internal/blocks"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/utils"
)

const MsgTagSlugTaken = "Tag with this slug already exists."

type TagService struct{ repo repository.TagRepo }

func NewTagService(r repository.TagRepo) *TagService {
	return &TagService{repo: r}
}

func cleanTag(t *models.Tag) error {
	errs := &blocks.StructuredValidationError{}
	t.Name = strings.TrimSpace(t.Name)
	t.Slug = strings.TrimSpace(t.Slug)
	if required(errs, "name", t.Name) {
		maxLength(errs, "name", t.Name, 100)
	}
	if t.Slug == "" {
		t.Slug = utils.Slugify(t.Name)
	}
	if t.Slug != "" && !utils.ValidSlug(t.Slug) {
		errs.Add("slug", &blocks.FieldValidationError{Message: MsgBadSlug})
	}
	return errs.ErrOrNil()
}

// slugTaken превращает конфликт уникальности в ошибку поля slug.
func slugTaken(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return slugConflict(MsgTagSlugTaken)
	}
	return err
}

func slugConflict(msg string) error {
	errs := &blocks.StructuredValidationError{}
	errs.Add("slug", &blocks.FieldValidationError{Message: msg})
	return errs
}

func (s *TagService) Create(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	if err := cleanTag(t); err != nil {
		return nil, err
	}
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, slugTaken(err)
	}
	t.ID = id
	return t, nil
}

func (s *TagService) Update(ctx context.Context, t *models.Tag) error {
	if err := cleanTag(t); err != nil {
		return err
	}
	return slugTaken(s.repo.Update(ctx, t))
}

func (s *TagService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *TagService) Search(ctx context.Context, q string) ([]models.Tag, error) {
	return s.repo.Search(ctx, strings.TrimSpace(q))
}
