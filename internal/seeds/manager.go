package seeds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"b3flip/config"
	"b3flip/internal/branching"
	"b3flip/internal/inputs"
	"b3flip/pkg/watchdog"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SeedManager feeds branchings described by manifests into the tree. Names are
// global across manifests, so a manifest may extend a chain declared by an
// earlier one.
type SeedManager struct {
	tree   *branching.Tree
	logger *zap.Logger

	mu      sync.Mutex
	names   map[string]*branching.Branching
	parents map[string]string

	done chan struct{}
}

type SeedManagerParams struct {
	fx.In

	Lc              fx.Lifecycle
	Config          *config.AppConfig
	Logger          *zap.Logger
	Tree            *branching.Tree
	WatchDogFactory *watchdog.WatchDogFactory
}

func NewSeedManager(p SeedManagerParams) *SeedManager {
	s := newSeedManager(p.Tree, p.Logger)
	seedDir := p.Config.SeedDir

	watchCtx, cancel := context.WithCancel(context.Background())

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.logger.Debug("starting seed manager", zap.String("dir", seedDir))
			if err := os.MkdirAll(seedDir, 0755); err != nil {
				return fmt.Errorf("failed to create seed folder: %w", err)
			}
			if err := s.LoadDir(seedDir); err != nil {
				// a broken manifest must not keep the valid ones out
				s.logger.Warn("some seed manifests could not be loaded", zap.Error(err))
			}

			notifyChan := make(chan string, 64)
			dog, err := p.WatchDogFactory.New(watchCtx, notifyChan, IsManifest)
			if err != nil {
				return err
			}
			if err := dog.AddDir(seedDir); err != nil {
				cancel()
				return err
			}
			go s.watch(notifyChan)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.logger.Debug("stopping seed manager")
			cancel()
			select {
			case <-s.done:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		},
	})
	return s
}

// NewStandalone returns a SeedManager without lifecycle: nothing is loaded or
// watched unless the caller asks for it.
func NewStandalone(tree *branching.Tree, logger *zap.Logger) *SeedManager {
	return newSeedManager(tree, logger)
}

func newSeedManager(tree *branching.Tree, logger *zap.Logger) *SeedManager {
	return &SeedManager{
		tree:    tree,
		logger:  logger.Named("seeds"),
		names:   make(map[string]*branching.Branching),
		parents: make(map[string]string),
		done:    make(chan struct{}),
	}
}

// IsManifest reports whether path names a YAML manifest.
func IsManifest(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func (s *SeedManager) watch(notifyChan <-chan string) {
	defer close(s.done)
	for path := range notifyChan {
		if err := s.LoadFile(path); err != nil {
			// partially written files fail here and are retried on the next write
			s.logger.Warn("failed to load seed manifest", zap.String("file", path), zap.Error(err))
		}
	}
}

// LoadDir applies every manifest of dir in lexical order.
func (s *SeedManager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read seed folder: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !IsManifest(entry.Name()) {
			continue
		}
		if err := s.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *SeedManager) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return err
	}
	inserted, updated, err := s.Apply(manifest)
	if err != nil {
		return err
	}
	s.logger.Info("seed manifest loaded",
		zap.String("file", path),
		zap.Int("inserted", inserted),
		zap.Int("updated", updated),
	)
	return nil
}

// Lookup returns the branching registered under name.
func (s *SeedManager) Lookup(name string) (*branching.Branching, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	node, ok := s.names[name]
	return node, ok
}

type pendingBranching struct {
	spec  BranchingSpec
	input *inputs.TypedBits
}

// Apply validates the whole manifest and only then changes the tree.
// A known name keeps its node; a differing input replaces its best input,
// which makes it eligible for a new bitflip session.
func (s *SeedManager) Apply(manifest *Manifest) (inserted, updated int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]pendingBranching, 0, len(manifest.Branchings))
	declared := make(map[string]struct{}, len(manifest.Branchings))
	for _, spec := range manifest.Branchings {
		if spec.Name == "" {
			return 0, 0, ErrMissingName
		}
		if _, dup := declared[spec.Name]; dup {
			return 0, 0, fmt.Errorf("%w: %s", ErrDuplicateName, spec.Name)
		}
		if spec.Parent != "" {
			_, known := s.names[spec.Parent]
			_, local := declared[spec.Parent]
			if !known && !local {
				return 0, 0, fmt.Errorf("%w: %s", ErrUnknownParent, spec.Parent)
			}
		}
		if _, known := s.names[spec.Name]; known && s.parents[spec.Name] != spec.Parent {
			return 0, 0, fmt.Errorf("%w: %s is already attached to %q", ErrDuplicateName, spec.Name, s.parents[spec.Name])
		}
		declared[spec.Name] = struct{}{}

		var input *inputs.TypedBits
		if spec.Input != nil {
			if input, err = spec.Input.Build(); err != nil {
				return 0, 0, fmt.Errorf("branching %s: %w", spec.Name, err)
			}
		}
		pending = append(pending, pendingBranching{spec, input})
	}

	for _, p := range pending {
		if node, known := s.names[p.spec.Name]; known {
			if p.input != nil && !sameInput(node.BestInput(), p.input) {
				node.SetBestInput(p.input)
				updated++
			}
			continue
		}

		var parent *branching.Branching
		if p.spec.Parent != "" {
			parent = s.names[p.spec.Parent]
		}
		s.names[p.spec.Name] = s.tree.Insert(parent, p.input)
		s.parents[p.spec.Name] = p.spec.Parent
		inserted++
	}
	return inserted, updated, nil
}

func sameInput(a, b *inputs.TypedBits) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.NumBits() == b.NumBits() && a.Bits.Equal(b.Bits) && slices.Equal(a.Types, b.Types)
}
