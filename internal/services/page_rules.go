package services

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"blogsite/internal/blocks"
	"blogsite/internal/models"
	"blogsite/internal/richtext"
	"blogsite/internal/utils"
)

const (
	titleMaxLength    = 255
	subtitleMaxLength = 100

	MsgNoBlog        = "The word 'blog' is not allowed."
	MsgOneCTA        = "You can only have one CTA link"
	MsgBadURL        = "Enter a valid URL."
	MsgBadSlug       = "Enter a valid slug consisting of lowercase letters, numbers and hyphens."
	MsgParentMissing = "Parent page does not exist."
	MsgParentType    = "This page type cannot be created here."
	MsgSlugInUse     = "This slug is already in use within the parent page."
)

// BlogDetailBody: не больше одной картинки в теле поста.
var BlogDetailBody = blocks.StreamBlock{
	BlockCounts: map[blocks.Type]blocks.Count{
		blocks.TypeImage: {Max: 1},
	},
}

var bodyPolicy = richtext.NewPolicy()

// allowedParents: nil значит, что страница живёт в корне.
var allowedParents = map[models.PageType][]models.PageType{
	models.PageTypeHome:       nil,
	models.PageTypeBlogIndex:  {models.PageTypeHome},
	models.PageTypeBlogDetail: {models.PageTypeBlogIndex},
}

func required(errs *blocks.StructuredValidationError, key, v string) bool {
	if strings.TrimSpace(v) == "" {
		errs.Add(key, &blocks.FieldValidationError{Message: blocks.MsgRequired})
		return false
	}
	return true
}

func maxLength(errs *blocks.StructuredValidationError, key, v string, max int) {
	if n := utf8.RuneCountInString(v); n > max {
		errs.Add(key, blocks.NewFieldError("Ensure this value has at most %d characters (it has %d).", max, n))
	}
}

// CleanPage нормализует страницу и проверяет её: сначала общие поля,
// затем правила конкретного типа. Все ошибки возвращаются одной StructuredValidationError.
// parent равен nil, если ParentID пуст или не найден.
func CleanPage(p *models.Page, parent *models.Page) error {
	errs := &blocks.StructuredValidationError{}

	p.Title = strings.TrimSpace(p.Title)
	p.Subtitle = strings.TrimSpace(p.Subtitle)
	p.Slug = strings.TrimSpace(p.Slug)

	if !p.Type.Valid() {
		errs.Add("type", blocks.NewFieldError("Unknown page type %q.", p.Type))
		return errs
	}

	if required(errs, "title", p.Title) {
		maxLength(errs, "title", p.Title, titleMaxLength)
	}
	if p.Slug == "" {
		p.Slug = utils.Slugify(p.Title)
	}
	if p.Slug != "" && !utils.ValidSlug(p.Slug) {
		errs.Add("slug", &blocks.FieldValidationError{Message: MsgBadSlug})
	} else {
		required(errs, "slug", p.Slug)
	}
	maxLength(errs, "subtitle", p.Subtitle, subtitleMaxLength)
	checkParent(errs, p, parent)

	switch p.Type {
	case models.PageTypeHome:
		cleanHomePage(errs, p)
	case models.PageTypeBlogIndex:
		cleanBlogIndex(p)
	case models.PageTypeBlogDetail:
		cleanBlogDetail(errs, p)
	}

	return errs.ErrOrNil()
}

func checkParent(errs *blocks.StructuredValidationError, p *models.Page, parent *models.Page) {
	allowed := allowedParents[p.Type]
	if p.ParentID == nil {
		if allowed != nil {
			errs.Add("parent_id", &blocks.FieldValidationError{Message: blocks.MsgRequired})
		}
		return
	}
	if parent == nil {
		errs.Add("parent_id", &blocks.FieldValidationError{Message: MsgParentMissing})
		return
	}
	for _, t := range allowed {
		if parent.Type == t {
			return
		}
	}
	errs.Add("parent_id", &blocks.FieldValidationError{Message: MsgParentType})
}

func cleanHomePage(errs *blocks.StructuredValidationError, p *models.Page) {
	p.BodyHTML = bodyPolicy.Sanitize(p.BodyHTML)
	p.CTAExternalURL = strings.TrimSpace(p.CTAExternalURL)
	p.Body, p.AuthorID, p.Tags = nil, nil, nil

	if p.CTAURL != nil && *p.CTAURL <= 0 {
		p.CTAURL = nil
	}
	if p.CTAURL != nil && p.CTAExternalURL != "" {
		errs.Add("cta_url", &blocks.FieldValidationError{Message: MsgOneCTA})
		errs.Add("cta_external_url", &blocks.FieldValidationError{Message: MsgOneCTA})
	} else if p.CTAExternalURL != "" && !validExternalURL(p.CTAExternalURL) {
		errs.Add("cta_external_url", &blocks.FieldValidationError{Message: MsgBadURL})
	}

	gallery := &blocks.StructuredValidationError{}
	for i, img := range p.GalleryImages {
		if img.ImageID <= 0 {
			gallery.Add(blocks.IndexKey(i), &blocks.FieldValidationError{Message: blocks.MsgRequired})
		}
		p.GalleryImages[i].SortOrder = i
	}
	errs.Add("gallery_images", gallery.ErrOrNil())
}

func cleanBlogIndex(p *models.Page) {
	p.BodyHTML = bodyPolicy.Sanitize(p.BodyHTML)
	p.Body, p.AuthorID, p.Tags = nil, nil, nil
	p.CTAURL, p.CTAExternalURL, p.GalleryImages = nil, "", nil
}

func cleanBlogDetail(errs *blocks.StructuredValidationError, p *models.Page) {
	p.BodyHTML = ""
	p.CTAURL, p.CTAExternalURL, p.GalleryImages = nil, "", nil
	p.Tags = normalizeTags(p.Tags)

	for _, f := range []struct{ key, value string }{
		{"title", p.Title},
		{"subtitle", p.Subtitle},
		{"slug", p.Slug},
	} {
		if strings.Contains(strings.ToLower(f.value), "blog") {
			errs.Add(f.key, &blocks.FieldValidationError{Message: MsgNoBlog})
		}
	}

	body, err := BlogDetailBody.Clean(p.Body)
	if err != nil {
		errs.Add("body", err)
		return
	}
	body.EnsureIDs()
	p.Body = body
}

func validExternalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func normalizeTags(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = utils.Slugify(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
