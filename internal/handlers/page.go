package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"blogsite/internal/logger"
	"blogsite/internal/models"
	"blogsite/internal/repository"
	"blogsite/internal/services"
	"blogsite/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type PageHandler struct {
	svc services.PageService
}

func NewPageHandler(svc services.PageService) *PageHandler {
	return &PageHandler{svc: svc}
}

// GetLive
// @Summary      Опубликованная страница
// @Description  Отрендеренная опубликованная версия с контекстом блоков. Ответ кэшируется до следующей публикации.
// @Tags         pages
// @Produce      json
// @Param        id   path      int  true  "ID страницы"
// @Success      200  {object}  models.RenderedPage
// @Failure      404  {object}  helpers.Response
// @Router       /api/pages/{id} [get]
func (h *PageHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	buf, err := h.svc.RenderLive(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка рендера страницы")
		return
	}
	helpers.RawJSON(w, http.StatusOK, buf)
}

// GetLiveBySlug
// @Summary      Опубликованная страница по slug
// @Tags         pages
// @Produce      json
// @Param        slug  path      string  true  "Slug страницы"
// @Success      200   {object}  models.RenderedPage
// @Failure      404   {object}  helpers.Response
// @Router       /api/pages/by-slug/{slug} [get]
func (h *PageHandler) GetLiveBySlug(w http.ResponseWriter, r *http.Request) {
	buf, err := h.svc.RenderLiveBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err, "Ошибка рендера страницы")
		return
	}
	helpers.RawJSON(w, http.StatusOK, buf)
}

// ListBlog
// @Summary      Опубликованные посты
// @Tags         pages
// @Produce      json
// @Param        tag  query     string  false  "Slug тега"
// @Success      200  {array}   models.Page
// @Router       /api/blog [get]
func (h *PageHandler) ListBlog(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.LiveBlogPosts(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, r, err, "Ошибка получения постов")
		return
	}
	if posts == nil {
		posts = []*models.Page{}
	}
	helpers.JSON(w, http.StatusOK, posts)
}

// List
// @Summary      Список страниц (админка)
// @Tags         admin-pages
// @Produce      json
// @Param        type       query  string  false  "home | blog_index | blog_detail"
// @Param        parent_id  query  int     false  "ID родителя"
// @Param        tag        query  string  false  "Slug тега"
// @Param        limit      query  int     false  "Лимит"
// @Param        offset     query  int     false  "Смещение"
// @Success      200  {array}  models.Page
// @Router       /api/admin/pages [get]
func (h *PageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.PageFilter{Type: models.PageType(q.Get("type")), Tag: q.Get("tag")}
	if v, err := strconv.ParseInt(q.Get("parent_id"), 10, 64); err == nil {
		f.ParentID = &v
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))

	pages, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "Ошибка получения страниц")
		return
	}
	if pages == nil {
		pages = []*models.Page{}
	}
	helpers.JSON(w, http.StatusOK, pages)
}

// Get
// @Summary      Страница (черновик)
// @Tags         admin-pages
// @Produce      json
// @Param        id   path      int  true  "ID страницы"
// @Success      200  {object}  models.Page
// @Failure      404  {object}  helpers.Response
// @Router       /api/admin/pages/{id} [get]
func (h *PageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка получения страницы")
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}

// Create
// @Summary      Создать страницу
// @Description  Страница создаётся черновиком. Ошибки валидации возвращаются деревом по полям и индексам блоков.
// @Tags         admin-pages
// @Accept       json
// @Produce      json
// @Param        body  body      models.PageRequest  true  "Страница"
// @Success      201   {object}  models.Page
// @Failure      400   {object}  helpers.Response
// @Router       /api/admin/pages [post]
func (h *PageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithCtx(r.Context()).Warn("ошибка декодирования JSON страницы", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Ошибка создания страницы")
		return
	}
	helpers.JSON(w, http.StatusCreated, p)
}

// Validate
// @Summary      Проверить страницу без сохранения
// @Tags         admin-pages
// @Accept       json
// @Produce      json
// @Param        body  body      models.PageRequest  true  "Страница"
// @Success      200   {object}  helpers.Response
// @Failure      400   {object}  helpers.Response
// @Router       /api/admin/pages/validate [post]
func (h *PageHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	if err := h.svc.Validate(r.Context(), req); err != nil {
		writeError(w, r, err, "Ошибка проверки страницы")
		return
	}
	helpers.JSON(w, http.StatusOK, "ok")
}

// Update
// @Summary      Обновить черновик страницы
// @Description  Опубликованная версия не меняется до Publish. Занятый у соседей slug даёт 400.
// @Tags         admin-pages
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "ID страницы"
// @Param        body  body      models.PageRequest  true  "Страница"
// @Success      200   {object}  models.Page
// @Failure      400   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Router       /api/admin/pages/{id} [patch]
func (h *PageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	var req models.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	p, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err, "Ошибка обновления страницы")
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}

// Delete
// @Summary      Удалить страницу
// @Tags         admin-pages
// @Param        id   path      int  true  "ID страницы"
// @Success      200  {object}  helpers.Response
// @Failure      404  {object}  helpers.Response
// @Router       /api/admin/pages/{id} [delete]
func (h *PageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "Ошибка удаления страницы")
		return
	}
	helpers.JSON(w, http.StatusOK, "Удалено")
}

// Publish
// @Summary      Опубликовать страницу
// @Description  Перепроверяет черновик, публикует и сбрасывает кэш отрендеренных страниц.
// @Tags         admin-pages
// @Produce      json
// @Param        id   path      int  true  "ID страницы"
// @Success      200  {object}  models.Page
// @Failure      400  {object}  helpers.Response
// @Router       /api/admin/pages/{id}/publish [post]
func (h *PageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	p, err := h.svc.Publish(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка публикации страницы")
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}

// Unpublish
// @Summary      Снять страницу с публикации
// @Tags         admin-pages
// @Produce      json
// @Param        id   path      int  true  "ID страницы"
// @Success      200  {object}  models.Page
// @Router       /api/admin/pages/{id}/unpublish [post]
func (h *PageHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	p, err := h.svc.Unpublish(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка снятия с публикации")
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}

// Preview
// @Summary      Предпросмотр черновика
// @Tags         admin-pages
// @Produce      json
// @Param        id   path      int  true  "ID страницы"
// @Success      200  {object}  models.RenderedPage
// @Router       /api/admin/pages/{id}/preview [post]
func (h *PageHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	out, err := h.svc.Preview(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка предпросмотра страницы")
		return
	}
	helpers.JSON(w, http.StatusOK, out)
}
