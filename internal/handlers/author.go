package handlers

import (
	"encoding/json"
	"net/http"

	"blogsite/internal/models"
	"blogsite/internal/reqctx"
	"blogsite/internal/services"
	"blogsite/internal/utils/helpers"
)

type AuthorHandler struct {
	svc services.AuthorService
}

func NewAuthorHandler(svc services.AuthorService) *AuthorHandler {
	return &AuthorHandler{svc: svc}
}

// GetLive
// @Summary      Опубликованный автор
// @Description  Отдаётся опубликованная версия; правки после публикации не видны.
// @Tags         authors
// @Produce      json
// @Param        id   path      int  true  "ID автора"
// @Success      200  {object}  models.Author
// @Failure      404  {object}  helpers.Response
// @Router       /api/authors/{id} [get]
func (h *AuthorHandler) GetLive(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	a, err := h.svc.GetLive(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка получения автора")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// List
// @Summary      Авторы (админка)
// @Tags         admin-authors
// @Produce      json
// @Param        live  query  bool  false  "Только опубликованные"
// @Success      200  {array}  models.Author
// @Router       /api/admin/authors [get]
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), r.URL.Query().Get("live") == "true")
	if err != nil {
		writeError(w, r, err, "Ошибка получения авторов")
		return
	}
	if list == nil {
		list = []*models.Author{}
	}
	helpers.JSON(w, http.StatusOK, list)
}

// Get
// @Summary      Автор (черновик)
// @Tags         admin-authors
// @Produce      json
// @Param        id   path      int  true  "ID автора"
// @Success      200  {object}  models.Author
// @Router       /api/admin/authors/{id} [get]
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	a, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка получения автора")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Create
// @Summary      Создать автора
// @Tags         admin-authors
// @Accept       json
// @Produce      json
// @Param        body  body      models.AuthorRequest  true  "Автор"
// @Success      201   {object}  models.Author
// @Failure      400   {object}  helpers.Response
// @Router       /api/admin/authors [post]
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.AuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	a, err := h.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err, "Ошибка создания автора")
		return
	}
	helpers.JSON(w, http.StatusCreated, a)
}

// Update
// @Summary      Обновить автора
// @Description  Заблокированного автора может менять только редактор из X-Editor, который его заблокировал.
// @Tags         admin-authors
// @Accept       json
// @Produce      json
// @Param        id        path    int                   true   "ID автора"
// @Param        X-Editor  header  string                false  "Имя редактора"
// @Param        body      body    models.AuthorRequest  true   "Автор"
// @Success      200  {object}  models.Author
// @Failure      409  {object}  helpers.Response
// @Router       /api/admin/authors/{id} [patch]
func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	var req models.AuthorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		helpers.Error(w, http.StatusBadRequest, "Невалидный JSON")
		return
	}
	a, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err, "Ошибка обновления автора")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Delete
// @Summary      Удалить автора
// @Tags         admin-authors
// @Param        id   path  int  true  "ID автора"
// @Success      200  {object}  helpers.Response
// @Failure      409  {object}  helpers.Response
// @Router       /api/admin/authors/{id} [delete]
func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err, "Ошибка удаления автора")
		return
	}
	helpers.JSON(w, http.StatusOK, "Удалено")
}

// Publish
// @Summary      Опубликовать автора
// @Description  Если go_live_at в будущем, текущий черновик ставится в расписание и публикуется в go_live_at.
// @Tags         admin-authors
// @Produce      json
// @Param        id   path  int  true  "ID автора"
// @Success      200  {object}  models.Author
// @Router       /api/admin/authors/{id}/publish [post]
func (h *AuthorHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	a, err := h.svc.Publish(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка публикации автора")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Unpublish
// @Summary      Снять автора с публикации
// @Description  Также отменяет запланированную публикацию.
// @Tags         admin-authors
// @Produce      json
// @Param        id   path  int  true  "ID автора"
// @Success      200  {object}  models.Author
// @Router       /api/admin/authors/{id}/unpublish [post]
func (h *AuthorHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	a, err := h.svc.Unpublish(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Ошибка снятия автора с публикации")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

type lockRequest struct {
	Editor string `json:"editor"`
}

// editorFrom: X-Editor (положен в контекст middleware) важнее тела запроса.
func editorFrom(r *http.Request) string {
	if name, ok := reqctx.GetEditor(r.Context()); ok {
		return name
	}
	var req lockRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	return req.Editor
}

// Lock
// @Summary      Заблокировать автора
// @Tags         admin-authors
// @Accept       json
// @Produce      json
// @Param        id        path    int     true   "ID автора"
// @Param        X-Editor  header  string  false  "Имя редактора"
// @Success      200  {object}  models.Author
// @Failure      409  {object}  helpers.Response
// @Router       /api/admin/authors/{id}/lock [post]
func (h *AuthorHandler) Lock(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	a, err := h.svc.Lock(r.Context(), id, editorFrom(r))
	if err != nil {
		writeError(w, r, err, "Ошибка блокировки автора")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// Unlock
// @Summary      Снять блокировку автора
// @Tags         admin-authors
// @Produce      json
// @Param        id        path    int     true   "ID автора"
// @Param        X-Editor  header  string  false  "Имя редактора"
// @Success      200  {object}  models.Author
// @Failure      409  {object}  helpers.Response
// @Router       /api/admin/authors/{id}/unlock [post]
func (h *AuthorHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	a, err := h.svc.Unlock(r.Context(), id, editorFrom(r))
	if err != nil {
		writeError(w, r, err, "Ошибка снятия блокировки")
		return
	}
	helpers.JSON(w, http.StatusOK, a)
}

// PreviewModes
// @Summary      Режимы предпросмотра автора
// @Tags         admin-authors
// @Produce      json
// @Success      200  {array}  services.PreviewMode
// @Router       /api/admin/authors/preview-modes [get]
func (h *AuthorHandler) PreviewModes(w http.ResponseWriter, r *http.Request) {
	helpers.JSON(w, http.StatusOK, h.svc.PreviewModes())
}

// Preview
// @Summary      Предпросмотр автора
// @Tags         admin-authors
// @Produce      json
// @Param        id    path   int     true   "ID автора"
// @Param        mode  query  string  false  "Режим: пусто или dark"
// @Success      200  {object}  models.AuthorPreview
// @Failure      400  {object}  helpers.Response
// @Router       /api/admin/authors/{id}/preview [get]
func (h *AuthorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromPath(r)
	if !ok {
		helpers.Error(w, http.StatusBadRequest, "Некорректный ID")
		return
	}
	p, err := h.svc.Preview(r.Context(), id, r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, err, "Ошибка предпросмотра автора")
		return
	}
	helpers.JSON(w, http.StatusOK, p)
}
