package cleanup

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/sachinssagar/Blog-post-backend/internal/models"
	"github.com/sachinssagar/Blog-post-backend/internal/storage"
	"github.com/sirupsen/logrus"
)

// stubPostRepo only supports ListImages; the sweep uses nothing else.
type stubPostRepo struct {
	images []string
}

func (s *stubPostRepo) Create(context.Context, *models.Post) error { return nil }
func (s *stubPostRepo) List(context.Context, string) ([]models.Post, error) {
	return nil, nil
}
func (s *stubPostRepo) ListByAuthor(context.Context, int64) ([]models.Post, error) {
	return nil, nil
}
func (s *stubPostRepo) FindByID(context.Context, int64) (*models.Post, error)    { return nil, nil }
func (s *stubPostRepo) FindBySlug(context.Context, string) (*models.Post, error) { return nil, nil }
func (s *stubPostRepo) Update(context.Context, *models.Post) error               { return nil }
func (s *stubPostRepo) Delete(context.Context, int64) error                      { return nil }
func (s *stubPostRepo) ListImages(context.Context) ([]string, error) {
	return s.images, nil
}

func TestSweepRemovesOrphansOnly(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := storage.NewStore(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}

	kept, err := store.Save(strings.NewReader("in use"), "a.png")
	if err != nil {
		t.Fatal(err)
	}
	orphan, err := store.Save(strings.NewReader("stale"), "b.png")
	if err != nil {
		t.Fatal(err)
	}

	sweeper := NewSweeper(&stubPostRepo{images: []string{kept}}, store, logger)
	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}

	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != kept {
		t.Errorf("store after sweep: %v, want only %s", names, kept)
	}
	for _, n := range names {
		if n == orphan {
			t.Errorf("orphan %s survived the sweep", orphan)
		}
	}
}
