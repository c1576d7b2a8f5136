package taxonomy

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Source fetches the backend's view of the taxonomy.
type Source interface {
	Categories(ctx context.Context) ([]RemoteCategory, error)
	SubCategories(ctx context.Context) ([]RemoteSubCategory, error)
}

// Store holds the active taxonomy snapshot. Reads never block on a load in
// progress; a completed load swaps the snapshot in one step.
type Store struct {
	mu      sync.RWMutex
	static  []Category
	current Snapshot
	lastErr error

	source Source
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSource sets the backend used by Load.
func WithSource(source Source) Option {
	return func(s *Store) {
		s.source = source
	}
}

// WithStatic replaces the built-in field schema.
func WithStatic(categories []Category) Option {
	return func(s *Store) {
		if len(categories) > 0 {
			s.static = categories
		}
	}
}

// WithLogger overrides the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamped on snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a store primed with the static taxonomy.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.static == nil {
		s.static = Default()
	}
	s.current = Snapshot{
		Categories: cloneCategories(s.static),
		Origin:     OriginStatic,
		LoadedAt:   s.now(),
	}
	return s
}

// Snapshot returns a copy of the active taxonomy.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.clone()
}

// LastError reports the failure of the most recent Load, if any.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Load fetches categories and sub-categories in parallel and joins them
// against the static schema. A failed fetch keeps the previous snapshot and
// is only logged.
func (s *Store) Load(ctx context.Context) Snapshot {
	if s.source == nil {
		return s.Snapshot()
	}

	var (
		cats []RemoteCategory
		subs []RemoteSubCategory
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		cats, err = s.source.Categories(egCtx)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch categories")
		}
		return nil
	})
	eg.Go(func() error {
		var err error
		subs, err = s.source.SubCategories(egCtx)
		if err != nil {
			return goerr.Wrap(err, "failed to fetch sub-categories")
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()
		s.log(ctx).Warn("taxonomy load failed, keeping previous snapshot", "error", err)
		return s.Snapshot()
	}

	joined := Join(s.static, cats, subs)
	s.mu.Lock()
	s.current = Snapshot{
		Categories: joined,
		Origin:     OriginRemote,
		LoadedAt:   s.now(),
	}
	s.lastErr = nil
	out := s.current.clone()
	s.mu.Unlock()

	s.log(ctx).Debug("taxonomy loaded", "categories", len(cats), "subcategories", len(subs))
	return out
}

func (s *Store) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.From(ctx)
}

// Join merges backend identities into the static schema.
//
// A remote category matches a static one when name or label are equal
// (case-sensitive). Matched categories take the remote id, label and icon and
// list only the remote sub-categories that match a static one. Static
// categories without a remote match keep their static id but list no
// sub-categories, since none of their forms has a backend id to submit under.
func Join(static []Category, cats []RemoteCategory, subs []RemoteSubCategory) []Category {
	out := make([]Category, 0, len(static))
	for _, cfg := range static {
		remote, ok := matchCategory(cfg, cats)
		if !ok {
			unmatched := cfg.Clone()
			unmatched.SubCategories = nil
			out = append(out, unmatched)
			continue
		}

		cat := Category{
			ID:    strconv.FormatInt(remote.ID, 10),
			Name:  cfg.Name,
			Label: firstNonEmpty(remote.Label, cfg.Label),
			Icon:  firstNonEmpty(remote.Icon, cfg.Icon),
		}
		for _, rs := range subs {
			if rs.CategoryID != remote.ID {
				continue
			}
			fs, ok := matchSubCategory(cfg, rs)
			if !ok {
				continue
			}
			cat.SubCategories = append(cat.SubCategories, SubCategory{
				ID:     strconv.FormatInt(rs.ID, 10),
				Name:   fs.Name,
				Label:  firstNonEmpty(rs.Label, fs.Label),
				Fields: fs.Clone().Fields,
			})
		}
		out = append(out, cat)
	}
	return out
}

func matchCategory(cfg Category, cats []RemoteCategory) (RemoteCategory, bool) {
	for _, c := range cats {
		if c.Name == cfg.Name || c.Label == cfg.Label {
			return c, true
		}
	}
	return RemoteCategory{}, false
}

func matchSubCategory(cfg Category, rs RemoteSubCategory) (SubCategory, bool) {
	for _, fs := range cfg.SubCategories {
		if fs.Name == rs.Name || fs.Label == rs.Label {
			return fs, true
		}
	}
	return SubCategory{}, false
}

func cloneCategories(in []Category) []Category {
	out := make([]Category, len(in))
	for i, cat := range in {
		out[i] = cat.Clone()
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
