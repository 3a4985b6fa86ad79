package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sachinssagar/Blog-post-backend/internal/config"
	"github.com/sachinssagar/Blog-post-backend/internal/feed"
	"github.com/sachinssagar/Blog-post-backend/internal/models"
	"github.com/sachinssagar/Blog-post-backend/internal/repository"
	"github.com/sachinssagar/Blog-post-backend/internal/service"
	"github.com/sachinssagar/Blog-post-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

type memPostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
}

func (f *memPostRepo) Create(_ context.Context, post *models.Post) error {
	for _, p := range f.posts {
		if p.Slug == post.Slug {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *memPostRepo) List(_ context.Context, search string) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range f.posts {
		if search != "" {
			needle := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(p.Title), needle) &&
				!strings.Contains(strings.ToLower(p.Content), needle) {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *memPostRepo) ListByAuthor(_ context.Context, authorID int64) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range f.posts {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *memPostRepo) FindByID(_ context.Context, id int64) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *memPostRepo) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *memPostRepo) Update(_ context.Context, post *models.Post) error {
	stored, ok := f.posts[post.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.Image = post.Image
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *memPostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *memPostRepo) ListImages(_ context.Context) ([]string, error) {
	var images []string
	for _, p := range f.posts {
		if p.Image != nil {
			images = append(images, *p.Image)
		}
	}
	return images, nil
}

type memUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func (f *memUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *memUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *memUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) Update(_ context.Context, user *models.User) error {
	stored, ok := f.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	*stored = *user
	stored.UpdatedAt = time.Now()
	return nil
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 2 * time.Hour,
	}
	posts := &memPostRepo{posts: map[int64]*models.Post{}}
	users := &memUserRepo{users: map[int64]*models.User{}}
	svc := service.NewService(posts, users, nil, logger, cfg)
	store, err := storage.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}
	h := NewHandler(svc, store, feed.NewBuilder("http://example.com"))
	return NewRouter(h, cfg)
}

func do(r *mux.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r *mux.Router, username string) {
	t.Helper()
	w := do(r, http.MethodPost, "/register/", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "s3cret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d: %s", username, w.Code, w.Body)
	}
}

func login(t *testing.T, r *mux.Router, username string) string {
	t.Helper()
	w := do(r, http.MethodPost, "/login/", "", map[string]string{
		"username": username,
		"password": "s3cret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", username, w.Code, w.Body)
	}
	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		User    struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Access == "" || resp.Refresh == "" {
		t.Fatalf("login %s: missing token pair: %s", username, w.Body)
	}
	if resp.User.Username != username {
		t.Fatalf("login %s: embedded user is %q", username, resp.User.Username)
	}
	return resp.Access
}

func TestPostLifecycle(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	register(t, r, "bob")
	alice := login(t, r, "alice")
	bob := login(t, r, "bob")

	// alice creates a post; slug is derived from the title
	w := do(r, http.MethodPost, "/posts/", alice, map[string]string{
		"title":   "Hello World",
		"content": "first post",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", w.Code, w.Body)
	}
	var post models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &post); err != nil {
		t.Fatal(err)
	}
	if post.Slug != "hello-world" {
		t.Errorf("slug = %q, want hello-world", post.Slug)
	}
	if post.AuthorID != 1 {
		t.Errorf("author = %d, want 1 (alice)", post.AuthorID)
	}

	// get-by-slug returns it
	w = do(r, http.MethodGet, "/posts/get-by-slug/?slug=hello-world", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get-by-slug: status %d", w.Code)
	}

	// bob cannot update it, regardless of payload validity
	w = do(r, http.MethodPatch, "/posts/update-by-slug/?slug=hello-world", bob, map[string]string{"title": "x"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("update-by-slug as bob: status %d, want 403", w.Code)
	}

	// alice can; the slug stays put
	w = do(r, http.MethodPatch, "/posts/update-by-slug/?slug=hello-world", alice, map[string]string{"title": "Renamed"})
	if w.Code != http.StatusOK {
		t.Fatalf("update-by-slug as alice: status %d: %s", w.Code, w.Body)
	}
	var updated models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Renamed" || updated.Slug != "hello-world" {
		t.Errorf("after update: title=%q slug=%q", updated.Title, updated.Slug)
	}

	// retrieve and delete by id
	w = do(r, http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("retrieve: status %d", w.Code)
	}
	w = do(r, http.MethodDelete, fmt.Sprintf("/posts/%d/", post.ID), bob, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete as bob: status %d, want 403", w.Code)
	}
	w = do(r, http.MethodDelete, fmt.Sprintf("/posts/%d/", post.ID), alice, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete as alice: status %d", w.Code)
	}
	w = do(r, http.MethodGet, fmt.Sprintf("/posts/%d/", post.ID), "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("retrieve after delete: status %d, want 404", w.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodPost, "/posts/", "", map[string]string{"title": "t", "content": "c"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", w.Code)
	}
}

func TestCreatePostValidation(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	alice := login(t, r, "alice")

	w := do(r, http.MethodPost, "/posts/", alice, map[string]string{"content": "no title"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	var errs map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &errs); err != nil {
		t.Fatal(err)
	}
	if errs["title"] == "" {
		t.Errorf("no field message for title: %v", errs)
	}
}

func TestDuplicateSlugFailsCreate(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	alice := login(t, r, "alice")

	w := do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Same Title", "content": "a"})
	if w.Code != http.StatusCreated {
		t.Fatal(w.Code)
	}
	w = do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "same   title", "content": "b"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("second create: status %d, want 400", w.Code)
	}
}

func TestGetBySlugErrors(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/posts/get-by-slug/", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing param: status %d, want 400", w.Code)
	}
	w = do(r, http.MethodGet, "/posts/get-by-slug/?slug=nothing-here", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown slug: status %d, want 404", w.Code)
	}
}

func TestMyPosts(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	register(t, r, "bob")
	alice := login(t, r, "alice")
	bob := login(t, r, "bob")

	do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Alice One", "content": "a"})
	do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Alice Two", "content": "a"})
	do(r, http.MethodPost, "/posts/", bob, map[string]string{"title": "Bob One", "content": "b"})

	w := do(r, http.MethodGet, "/posts/my-posts/", alice, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var mine []models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &mine); err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Errorf("alice sees %d posts, want 2", len(mine))
	}

	w = do(r, http.MethodGet, "/posts/my-posts/", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: status %d, want 401", w.Code)
	}
}

func TestDeleteBySlugWithoutAuth(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	alice := login(t, r, "alice")
	do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Unprotected", "content": "c"})

	// no token, not the owner, still deletes
	w := do(r, http.MethodDelete, "/posts/delete-by-slug/?slug=unprotected", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status %d, want 204", w.Code)
	}
	w = do(r, http.MethodDelete, "/posts/delete-by-slug/?slug=unprotected", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", w.Code)
	}
}

func TestSearchFilter(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	alice := login(t, r, "alice")
	do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Cooking Tips", "content": "pasta"})
	do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Travel Notes", "content": "mountains"})

	w := do(r, http.MethodGet, "/posts/?search=pasta", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var posts []models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 || posts[0].Title != "Cooking Tips" {
		t.Errorf("search result: %+v", posts)
	}
}

func TestRegisterErrors(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")

	w := do(r, http.MethodPost, "/register/", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "pw",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate username: status %d, want 400", w.Code)
	}

	w = do(r, http.MethodPost, "/register/", "", map[string]string{"username": "carol"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status %d, want 400", w.Code)
	}
}

func TestRegisterNeverReturnsPassword(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodPost, "/register/", "", map[string]string{
		"username": "alice", "email": "a@example.com", "password": "s3cret",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "s3cret") || strings.Contains(w.Body.String(), "password") {
		t.Errorf("password material in response: %s", w.Body)
	}
}

func TestLoginInvalid(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")

	w := do(r, http.MethodPost, "/login/", "", map[string]string{"username": "alice", "password": "wrong"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad password: status %d, want 400", w.Code)
	}
	w = do(r, http.MethodPost, "/login/", "", map[string]string{"username": "ghost", "password": "pw"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown user: status %d, want 400", w.Code)
	}
}

func TestUpdateUser(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	alice := login(t, r, "alice")

	w := do(r, http.MethodPatch, "/register/update-user/", alice, map[string]string{"email": "new@example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body)
	}
	var resp struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.User.Email != "new@example.com" {
		t.Errorf("email = %q", resp.User.Email)
	}

	w = do(r, http.MethodPatch, "/register/update-user/", "", map[string]string{"email": "x@example.com"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: status %d, want 401", w.Code)
	}
}

func TestRefreshTokenRejectedForRequests(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	w := do(r, http.MethodPost, "/login/", "", map[string]string{"username": "alice", "password": "s3cret"})
	var resp struct {
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	w = do(r, http.MethodGet, "/posts/my-posts/", resp.Refresh, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token accepted: status %d, want 401", w.Code)
	}
}

func TestFeed(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")
	alice := login(t, r, "alice")
	do(r, http.MethodPost, "/posts/", alice, map[string]string{"title": "Feed Me", "content": "rss body"})

	w := do(r, http.MethodGet, "/posts/feed/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "feed-me") {
		t.Errorf("feed missing item: %s", w.Body)
	}
}
