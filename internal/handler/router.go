package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sachinssagar/Blog-post-backend/internal/config"
	"github.com/sachinssagar/Blog-post-backend/internal/middleware"
)

// NewRouter binds the URL table to the handler.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/posts/", h.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/posts/get-by-slug/", h.GetPostBySlug).Methods(http.MethodGet)
	r.HandleFunc("/posts/feed/", h.Feed).Methods(http.MethodGet)
	r.HandleFunc("/posts/delete-by-slug/", h.DeletePostBySlug).Methods(http.MethodDelete)
	r.HandleFunc("/posts/{id:[0-9]+}/", h.GetPost).Methods(http.MethodGet)
	r.HandleFunc("/register/", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login/", h.Login).Methods(http.MethodPost)

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/posts/", h.CreatePost).Methods(http.MethodPost)
	authRouter.HandleFunc("/posts/my-posts/", h.MyPosts).Methods(http.MethodGet)
	authRouter.HandleFunc("/posts/update-by-slug/", h.UpdatePostBySlug).Methods(http.MethodPatch)
	authRouter.HandleFunc("/posts/upload-image/", h.UploadImage).Methods(http.MethodPost)
	authRouter.HandleFunc("/posts/{id:[0-9]+}/", h.UpdatePost).Methods(http.MethodPatch)
	authRouter.HandleFunc("/posts/{id:[0-9]+}/", h.DeletePost).Methods(http.MethodDelete)
	authRouter.HandleFunc("/register/update-user/", h.UpdateUser).Methods(http.MethodPatch)

	return r
}
