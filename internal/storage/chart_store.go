package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/lipohub/tg-planner-bot/internal/domain"
)

const (
	timestampLayout = "2006-01-02_15-04-05"
	maxTitleRunes   = 30
)

// ChartStore writes rendered charts to a directory on disk.
type ChartStore struct {
	dir   string
	now   func() time.Time
	newID func() string
}

type ChartStoreOption func(*ChartStore)

func WithStoreClock(now func() time.Time) ChartStoreOption {
	return func(s *ChartStore) { s.now = now }
}

func WithIDSource(newID func() string) ChartStoreOption {
	return func(s *ChartStore) { s.newID = newID }
}

func NewChartStore(dir string, opts ...ChartStoreOption) *ChartStore {
	s := &ChartStore{
		dir:   dir,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ChartStore) Dir() string { return s.dir }

// Save writes res under a unique name and returns the full path.
func (s *ChartStore) Save(userID int64, res domain.RenderResult) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating charts directory: %w", err)
	}
	path := filepath.Join(s.dir, s.FileName(userID, res.GraphType, res.Title))
	if err := os.WriteFile(path, res.Image, 0o644); err != nil {
		return "", fmt.Errorf("writing chart %s: %w", path, err)
	}
	return path, nil
}

// FileName builds <graph>_<timestamp>_user<id>_<safe-title>_<id8>.png.
func (s *ChartStore) FileName(userID int64, graph domain.GraphType, title string) string {
	id := strings.ReplaceAll(s.newID(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_user%d_%s_%s.png",
		graph, s.now().Format(timestampLayout), userID, SafeTitle(title), id)
}

// SafeTitle keeps the first 30 runes of title and replaces every rune that
// is not a letter or digit with an underscore.
func SafeTitle(title string) string {
	var b strings.Builder
	n := 0
	for _, r := range title {
		if n == maxTitleRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
		n++
	}
	return b.String()
}
