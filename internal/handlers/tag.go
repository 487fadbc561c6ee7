package handlers

import (
	"encoding/json"
	"net/http"

	"blogsite/internal/models"
	"blogsite/internal/services"
	"blogsite/internal/utils/helpers"
)

type TagHandler struct{ svc *services.TagService }

func NewTagHandler(svc *services.TagService) *TagHandler { return &TagHandler{svc: svc} }

// Search
// @Summary  Поиск тегов (автодополнение)
// @Tags     tags
// @Produce  json
// @Param    q    query  string  false  "Подстрока имени"
// @Success  200  {array}  models.Tag
// @Router   /api/tags [get]
func (h *TagHandler) Search(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err, "Ошибка поиска тегов")
		return
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	helpers.JSON(w, http.StatusOK, tags)
}

// Create
// @Summary  Создать тег
// @Tags     admin-tags
// @Accept   json
// @Produce  json
// @Param    body  body  models.Tag  true  "Тег; slug можно не указывать"
// @Success  201  {object}  models.Tag
// @Failure  400  {object}  helpers.Response
// @Router   /api/admin/tags [post]
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var t models.Tag
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	created, err := h.svc.Create(r.Context(), &t)
	if err != nil {
		writeError(w, r, err, "Ошибка создания тега")
		return
	}
	helpers.JSON(w, http.StatusCreated, created)
}

// Update
// @Summary  Обновить тег
// @Tags     admin-tags
// @Accept   json
// @Produce  json
// @Param    id    path  int         true  "ID тега"
// @Param    body  body  models.Tag  true  "Тег"
// @Success  200  {object}  models.Tag
// @Router   /api/admin/tags/{id} [patch]
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	var t models.Tag
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	t.ID = id
	if err := h.svc.Update(r.Context(), &t); err != nil {
		writeError(w, r, err, "Ошибка обновления тега")
		return
	}
	helpers.JSON(w, http.StatusOK, t)
}

// Delete
// @Summary  Удалить тег
// @Tags     admin-tags
// @Param    id  path  int  true  "ID тега"
// @Success  200  {object}  helpers.Response
// @Router   /api/admin/tags/{id} [delete]
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "Ошибка удаления тега")
		return
	}
	helpers.JSON(w, http.StatusOK, "Удалено")
}
