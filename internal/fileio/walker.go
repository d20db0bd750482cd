// Package fileio discovers ABL sources and writes formatted output back
// to disk.
package fileio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches the usual ABL source extensions.
var DefaultInclude = []string{"**/*.{p,w,i,cls,P,W,I,CLS}"}

// DefaultExclude skips VCS metadata and build output.
var DefaultExclude = []string{"**/.git/**", "**/node_modules/**", "**/.builder/**"}

// Walker finds files under a set of roots.
type Walker struct {
	Include []string
	Exclude []string
}

func NewWalker(include, exclude []string) *Walker {
	if len(include) == 0 {
		include = DefaultInclude
	}
	return &Walker{Include: include, Exclude: append(append([]string{}, DefaultExclude...), exclude...)}
}

// Discover expands paths into a sorted, duplicate-free file list. A path
// naming a file is taken as is unless excluded; directories are walked
// and filtered by the include patterns.
func (w *Walker) Discover(ctx context.Context, paths ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot access path %s: %w", root, err)
		}
		if !info.IsDir() {
			if !w.excluded(root, filepath.Base(root)) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil || rel == "." {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if w.excluded(path, rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if w.excluded(rel, rel) || !matchAny(w.Include, rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (w *Walker) excluded(path, rel string) bool {
	return matchAny(w.Exclude, filepath.ToSlash(path)) || matchAny(w.Exclude, rel)
}

// matchAny tries each pattern against the slash path and, for patterns
// without a separator, against the base name.
func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if ok, err := doublestar.Match(pattern, filepath.Base(path)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// ValidatePatterns rejects malformed globs before any walking starts.
func ValidatePatterns(patterns ...string) error {
	var errs []error
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("invalid pattern %q", p))
		}
	}
	return errors.Join(errs...)
}

// Map runs fn over items with at most jobs goroutines and returns results
// in input order. Items not started before ctx is cancelled are left as
// zero values.
func Map[T any](ctx context.Context, items []string, jobs int, fn func(context.Context, string) T) []T {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	results := make([]T, len(items))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for n := min(jobs, len(items)); n > 0; n-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = fn(ctx, items[i])
			}
		}()
	}

feed:
	for i := range items {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	return results
}
