package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sachinssagar/Blog-post-backend/internal/feed"
	"github.com/sachinssagar/Blog-post-backend/internal/middleware"
	"github.com/sachinssagar/Blog-post-backend/internal/repository"
	"github.com/sachinssagar/Blog-post-backend/internal/serializer"
	"github.com/sachinssagar/Blog-post-backend/internal/service"
	"github.com/sachinssagar/Blog-post-backend/internal/storage"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	svc   *service.Service
	store *storage.Store
	feed  *feed.Builder
}

func NewHandler(svc *service.Service, store *storage.Store, feed *feed.Builder) *Handler {
	return &Handler{svc: svc, store: store, feed: feed}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writePostError maps service/repository failures on post operations to the
// API's status codes.
func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, service.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "You do not have permission to edit this post")
	case errors.Is(err, repository.ErrDuplicate):
		writeJSON(w, http.StatusBadRequest, serializer.FieldErrors{"slug": "post with this slug already exists"})
	default:
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ListPosts handles GET /posts/, optionally filtered by the search parameter.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// CreatePost handles POST /posts/; the caller becomes the author.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var in serializer.PostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := in.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	userID, _ := middleware.UserID(r.Context())
	post, err := h.svc.CreatePost(r.Context(), userID, &in)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /posts/{id}/.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	post, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// UpdatePost handles PATCH /posts/{id}/, owner only.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	var patch serializer.PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := patch.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	userID, _ := middleware.UserID(r.Context())
	post, err := h.svc.UpdatePost(r.Context(), userID, id, &patch)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /posts/{id}/, owner only.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	userID, _ := middleware.UserID(r.Context())
	if err := h.svc.DeletePost(r.Context(), userID, id); err != nil {
		writePostError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPostBySlug handles GET /posts/get-by-slug/?slug=...
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeDetail(w, http.StatusBadRequest, "Slug parameter is required")
		return
	}
	post, err := h.svc.GetPostBySlug(r.Context(), slug)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// MyPosts handles GET /posts/my-posts/ for the authenticated caller.
func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	posts, err := h.svc.MyPosts(r.Context(), userID)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// UpdatePostBySlug handles PATCH /posts/update-by-slug/?slug=..., owner only.
func (h *Handler) UpdatePostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		writeDetail(w, http.StatusBadRequest, "Slug parameter is required")
		return
	}
	var patch serializer.PostPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := patch.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	userID, _ := middleware.UserID(r.Context())
	post, err := h.svc.UpdatePostBySlug(r.Context(), userID, slug, &patch)
	if err != nil {
		writePostError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePostBySlug handles DELETE /posts/delete-by-slug/?slug=...
func (h *Handler) DeletePostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("slug")
	if err := h.svc.DeletePostBySlug(r.Context(), slug); err != nil {
		writePostError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Feed handles GET /posts/feed/ and returns the RSS document.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.ListPosts(r.Context(), "")
	if err != nil {
		writePostError(w, err)
		return
	}
	out, err := h.feed.Render(posts)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write(out)
}

// UploadImage handles POST /posts/upload-image/ with a multipart "image" field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	name, err := h.store.Save(file, header.Filename)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"image": name})
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in serializer.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := in.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	user, err := h.svc.Register(r.Context(), &in)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeJSON(w, http.StatusBadRequest, serializer.FieldErrors{"username": "A user with that username already exists"})
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]serializer.UserResponse{"user": serializer.NewUserResponse(user)})
}

// UpdateUser handles PATCH /register/update-user/ for the authenticated caller.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	var patch serializer.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := patch.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), userID, &patch)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeJSON(w, http.StatusBadRequest, serializer.FieldErrors{"username": "A user with that username already exists"})
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]serializer.UserResponse{"user": serializer.NewUserResponse(user)})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string                  `json:"access"`
	Refresh string                  `json:"refresh"`
	User    serializer.UserResponse `json:"user"`
}

// Login handles user authentication, returning a token pair and the user.
// Every failure is reported as 400 with a fixed message.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, service.ErrInvalidCredentials.Error())
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Access:  result.Access,
		Refresh: result.Refresh,
		User:    serializer.NewUserResponse(result.User),
	})
}
