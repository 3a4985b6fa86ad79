// Package serializer defines the request and response payloads of the API.
// Every payload enumerates its fields explicitly; server-assigned post fields
// (slug, author, created_at, updated_at) have no input counterpart and are
// ignored when a client sends them.
package serializer

import (
	"strings"
	"time"

	"github.com/sachinssagar/Blog-post-backend/internal/models"
)

const maxTitleLen = 100

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// PostInput carries the client-writable fields for creating a post.
type PostInput struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Image   *string `json:"image"`
}

// Validate returns field-level messages, or nil when the input is valid.
func (in *PostInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "This field is required"
	} else if len(in.Title) > maxTitleLen {
		errs["title"] = "Ensure this field has no more than 100 characters"
	}
	if strings.TrimSpace(in.Content) == "" {
		errs["content"] = "This field is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// PostPatch carries a partial update; nil fields are left unchanged.
type PostPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Image   *string `json:"image"`
}

func (p *PostPatch) Validate() FieldErrors {
	errs := FieldErrors{}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			errs["title"] = "This field may not be blank"
		} else if len(*p.Title) > maxTitleLen {
			errs["title"] = "Ensure this field has no more than 100 characters"
		}
	}
	if p.Content != nil && strings.TrimSpace(*p.Content) == "" {
		errs["content"] = "This field may not be blank"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Apply copies the set fields onto the post. The slug is never touched, even
// when the title changes.
func (p *PostPatch) Apply(post *models.Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Image != nil {
		post.Image = p.Image
	}
}

// RegisterInput carries the fields accepted at user registration.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "This field is required"
	}
	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "This field is required"
	}
	if in.Password == "" {
		errs["password"] = "This field is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UserPatch carries a partial update of the caller's own user record.
type UserPatch struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (p *UserPatch) Validate() FieldErrors {
	errs := FieldErrors{}
	if p.Username != nil && strings.TrimSpace(*p.Username) == "" {
		errs["username"] = "This field may not be blank"
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		errs["email"] = "This field may not be blank"
	}
	if p.Password != nil && *p.Password == "" {
		errs["password"] = "This field may not be blank"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// UserResponse is the read-only projection of a user returned by the API.
// The password never appears, in any form.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse projects a user record onto the response shape.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
