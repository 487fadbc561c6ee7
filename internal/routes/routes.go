package routes

import (
	"net/http"

	"blogsite/internal/handlers"
	"blogsite/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	pageH *handlers.PageHandler,
	authorH *handlers.AuthorHandler,
	tagH *handlers.TagHandler,
	adminH *handlers.AdminHandler,
) {
	router.Use(middleware.RequestContext)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Logging)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/pages/{id:[0-9]+}", pageH.GetLive).Methods(http.MethodGet)
	api.HandleFunc("/pages/by-slug/{slug}", pageH.GetLiveBySlug).Methods(http.MethodGet)
	api.HandleFunc("/blog", pageH.ListBlog).Methods(http.MethodGet)
	api.HandleFunc("/authors/{id:[0-9]+}", authorH.GetLive).Methods(http.MethodGet)
	api.HandleFunc("/tags", tagH.Search).Methods(http.MethodGet)

	// --- Админка ---
	admin := api.PathPrefix("/admin").Subrouter()

	admin.HandleFunc("/blocks", adminH.Blocks).Methods(http.MethodGet)
	admin.HandleFunc("/permissions", adminH.Permissions).Methods(http.MethodGet)
	admin.HandleFunc("/image-formats", adminH.ImageFormats).Methods(http.MethodGet)

	admin.HandleFunc("/pages", pageH.List).Methods(http.MethodGet)
	admin.HandleFunc("/pages", pageH.Create).Methods(http.MethodPost)
	admin.HandleFunc("/pages/validate", pageH.Validate).Methods(http.MethodPost)
	admin.HandleFunc("/pages/{id:[0-9]+}", pageH.Get).Methods(http.MethodGet)
	admin.HandleFunc("/pages/{id:[0-9]+}", pageH.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/pages/{id:[0-9]+}", pageH.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/pages/{id:[0-9]+}/publish", pageH.Publish).Methods(http.MethodPost)
	admin.HandleFunc("/pages/{id:[0-9]+}/unpublish", pageH.Unpublish).Methods(http.MethodPost)
	admin.HandleFunc("/pages/{id:[0-9]+}/preview", pageH.Preview).Methods(http.MethodPost)

	admin.HandleFunc("/authors", authorH.List).Methods(http.MethodGet)
	admin.HandleFunc("/authors", authorH.Create).Methods(http.MethodPost)
	admin.HandleFunc("/authors/preview-modes", authorH.PreviewModes).Methods(http.MethodGet)
	admin.HandleFunc("/authors/{id:[0-9]+}", authorH.Get).Methods(http.MethodGet)
	admin.HandleFunc("/authors/{id:[0-9]+}", authorH.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/authors/{id:[0-9]+}", authorH.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/authors/{id:[0-9]+}/publish", authorH.Publish).Methods(http.MethodPost)
	admin.HandleFunc("/authors/{id:[0-9]+}/unpublish", authorH.Unpublish).Methods(http.MethodPost)
	admin.HandleFunc("/authors/{id:[0-9]+}/lock", authorH.Lock).Methods(http.MethodPost)
	admin.HandleFunc("/authors/{id:[0-9]+}/unlock", authorH.Unlock).Methods(http.MethodPost)
	admin.HandleFunc("/authors/{id:[0-9]+}/preview", authorH.Preview).Methods(http.MethodGet)

	admin.HandleFunc("/tags", tagH.Create).Methods(http.MethodPost)
	admin.HandleFunc("/tags/{id:[0-9]+}", tagH.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/tags/{id:[0-9]+}", tagH.Delete).Methods(http.MethodDelete)
}
