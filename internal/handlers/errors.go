package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"blogsite/internal/blocks"
	"blogsite/internal/logger"
	"blogsite/internal/services"
	"blogsite/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// writeError: ошибки валидации и известные sentinel-ошибки уходят клиенту,
// остальное логируется и отдаётся как 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case blocks.IsValidationError(err):
		helpers.ValidationError(w, err)
	case errors.Is(err, services.ErrNotFound):
		helpers.Error(w, http.StatusNotFound, "Не найдено")
	case errors.Is(err, services.ErrLocked):
		helpers.Error(w, http.StatusConflict, "Заблокировано другим редактором")
	case errors.Is(err, services.ErrInvalidPreviewMode):
		helpers.Error(w, http.StatusBadRequest, "Неизвестный режим предпросмотра")
	default:
		logger.WithCtx(r.Context()).Error(msg, zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, msg)
	}
}

func idFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}
