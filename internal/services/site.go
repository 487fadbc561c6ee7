package services

import (
	"blogsite/internal/blocks"
	"blogsite/internal/models"
	"blogsite/internal/richtext"
)

// CanEditAuthorName — право на смену имени автора, регистрируется при старте.
var CanEditAuthorName = models.Permission{
	AppLabel: "blogpages",
	Codename: "can_edit_author_name",
	Name:     "Can edit author name",
}

// SiteService отдаёт справочники админки: блоки, права, форматы изображений.
type SiteService struct {
	formats     *richtext.Formats
	permissions []models.Permission
}

func NewSiteService(formats *richtext.Formats) *SiteService {
	return &SiteService{
		formats:     formats,
		permissions: []models.Permission{CanEditAuthorName},
	}
}

func (s *SiteService) Blocks() []blocks.Definition {
	return blocks.Definitions()
}

func (s *SiteService) Permissions() []models.Permission {
	return append([]models.Permission(nil), s.permissions...)
}

func (s *SiteService) ImageFormats() []richtext.ImageFormat {
	return s.formats.List()
}

func (s *SiteService) RichTextFeatures() []richtext.Feature {
	return bodyPolicy.Features()
}
