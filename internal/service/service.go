package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sachinssagar/Blog-post-backend/internal/config"
	"github.com/sachinssagar/Blog-post-backend/internal/models"
	"github.com/sachinssagar/Blog-post-backend/internal/repository"
	"github.com/sachinssagar/Blog-post-backend/internal/serializer"
	"github.com/sachinssagar/Blog-post-backend/internal/utils"
	"github.com/sachinssagar/Blog-post-backend/internal/utils/email"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrForbidden is returned when the caller is not the post's author.
	ErrForbidden = errors.New("you do not have permission to edit this post")
	// ErrInvalidCredentials covers every login failure; the underlying cause
	// is logged but never sent to the client.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// TokenPair holds the access and refresh tokens issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResult is a token pair together with the authenticated user.
type LoginResult struct {
	TokenPair
	User *models.User
}

// Service handles business logic
type Service struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	mail   *email.Sender
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service. mail may be nil when SMTP is not configured.
func NewService(posts repository.PostRepository, users repository.UserRepository, mail *email.Sender, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{posts: posts, users: users, mail: mail, log: log, config: cfg}
}

// ListPosts returns all posts, optionally filtered by search text.
func (s *Service) ListPosts(ctx context.Context, search string) ([]models.Post, error) {
	return s.posts.List(ctx, search)
}

// CreatePost stores a new post owned by the caller. The slug is derived from
// the title here, once; later title changes never touch it.
func (s *Service) CreatePost(ctx context.Context, authorID int64, in *serializer.PostInput) (*models.Post, error) {
	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Image:    in.Image,
		AuthorID: authorID,
		Slug:     utils.Slugify(in.Title),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.log.Infof("Post created: %s by user %d", post.Slug, authorID)
	return post, nil
}

// GetPost retrieves a post by primary key.
func (s *Service) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// GetPostBySlug retrieves a post by slug.
func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.posts.FindBySlug(ctx, slug)
}

// MyPosts lists the posts owned by the caller.
func (s *Service) MyPosts(ctx context.Context, userID int64) ([]models.Post, error) {
	return s.posts.ListByAuthor(ctx, userID)
}

// UpdatePost applies a partial update to a post located by primary key,
// owner only.
func (s *Service) UpdatePost(ctx context.Context, userID, id int64, patch *serializer.PostPatch) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, userID, post, patch)
}

// UpdatePostBySlug applies a partial update to a post located by slug,
// owner only.
func (s *Service) UpdatePostBySlug(ctx context.Context, userID int64, slug string, patch *serializer.PostPatch) (*models.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.applyPatch(ctx, userID, post, patch)
}

func (s *Service) applyPatch(ctx context.Context, userID int64, post *models.Post, patch *serializer.PostPatch) (*models.Post, error) {
	if post.AuthorID != userID {
		return nil, ErrForbidden
	}
	patch.Apply(post)
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.log.Infof("Post updated: %s by user %d", post.Slug, userID)
	return post, nil
}

// DeletePost removes a post by primary key, owner only.
func (s *Service) DeletePost(ctx context.Context, userID, id int64) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return ErrForbidden
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.log.Infof("Post deleted: %s by user %d", post.Slug, userID)
	return nil
}

// DeletePostBySlug removes a post located by slug.
// TODO: unlike UpdatePostBySlug this performs no ownership check, so any
// caller can delete any post; confirm whether that is intended before
// tightening it.
func (s *Service) DeletePostBySlug(ctx context.Context, slug string) error {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.log.Infof("Post deleted by slug: %s", slug)
	return nil
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, in *serializer.RegisterInput) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Username)

	if s.mail != nil && s.mail.Enabled() {
		if err := s.mail.SendWelcome(user.Email, user.Username); err != nil {
			s.log.Warnf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

// UpdateUser applies a partial update to the caller's own user record.
func (s *Service) UpdateUser(ctx context.Context, userID int64, patch *serializer.UserPatch) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.log.Infof("User updated: %s", user.Username)
	return user, nil
}

// Login authenticates a user and returns an access/refresh token pair
// together with the user record.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Debugf("Login failed for %s: %v", username, err)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debugf("Login failed for %s: bad password", username)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	s.log.Infof("User logged in: %s", user.Username)
	return &LoginResult{TokenPair: pair, User: user}, nil
}

func (s *Service) issueTokens(user *models.User) (TokenPair, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
	})
	accessString, err := access.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": fmt.Sprintf("%d", user.ID),
		"iat": now.Unix(),
		"exp": now.Add(s.config.RefreshTokenTTL).Unix(),
		"typ": "refresh",
	})
	refreshString, err := refresh.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return TokenPair{Access: accessString, Refresh: refreshString}, nil
}
