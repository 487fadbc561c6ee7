package handlers

import (
	"net/http"

	"blogsite/internal/services"
	"blogsite/internal/utils/helpers"
)

type AdminHandler struct{ site *services.SiteService }

func NewAdminHandler(site *services.SiteService) *AdminHandler { return &AdminHandler{site: site} }

// Blocks
// @Summary  Типы блоков для редактора
// @Tags     admin
// @Produce  json
// @Success  200  {array}  blocks.Definition
// @Router   /api/admin/blocks [get]
func (h *AdminHandler) Blocks(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, h.site.Blocks())
}

// Permissions
// @Summary  Дополнительные права сайта
// @Tags     admin
// @Produce  json
// @Success  200  {array}  models.Permission
// @Router   /api/admin/permissions [get]
func (h *AdminHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, h.site.Permissions())
}

// ImageFormats
// @Summary  Форматы изображений в rich text
// @Tags     admin
// @Produce  json
// @Success  200  {array}  richtext.ImageFormat
// @Router   /api/admin/image-formats [get]
func (h *AdminHandler) ImageFormats(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, map[string]any{
		"formats":  h.site.ImageFormats(),
		"features": h.site.RichTextFeatures(),
	})
}
