// Package cleanup removes uploaded images that no post references anymore.
// The sweep runs on a nightly schedule registered in main.
package cleanup

import (
	"context"
	"fmt"

	"github.com/sachinssagar/Blog-post-backend/internal/repository"
	"github.com/sachinssagar/Blog-post-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// Sweeper deletes orphaned images from the store.
type Sweeper struct {
	posts repository.PostRepository
	store *storage.Store
	log   *logrus.Logger
}

// NewSweeper initializes a sweeper.
func NewSweeper(posts repository.PostRepository, store *storage.Store, log *logrus.Logger) *Sweeper {
	return &Sweeper{posts: posts, store: store, log: log}
}

// Sweep removes every stored image that is not referenced by any post.
func (s *Sweeper) Sweep(ctx context.Context) error {
	referenced, err := s.posts.ListImages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list referenced images: %w", err)
	}
	inUse := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		inUse[name] = true
	}

	stored, err := s.store.List()
	if err != nil {
		return fmt.Errorf("failed to list stored images: %w", err)
	}

	removed := 0
	for _, name := range stored {
		if inUse[name] {
			continue
		}
		if err := s.store.Remove(name); err != nil {
			s.log.Warnf("Failed to remove orphaned image %s: %v", name, err)
			continue
		}
		removed++
	}

	if removed > 0 {
		s.log.Infof("Removed %d orphaned images", removed)
	}
	return nil
}
