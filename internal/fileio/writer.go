package fileio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrLockTimeout is returned when another process keeps a file locked.
var ErrLockTimeout = errors.New("timeout waiting for lock")

// WriterConfig controls how formatted output replaces a source file.
type WriterConfig struct {
	Fsync       bool
	LockTimeout time.Duration
	TempSuffix  string
	Backup      bool
}

func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		LockTimeout: 5 * time.Second,
		TempSuffix:  ".ablfmt.tmp",
	}
}

// Writer replaces files through a temp file and rename, guarded by a
// sibling .lock file holding the owner's PID.
type Writer struct {
	config WriterConfig
	mu     sync.Mutex
	held   map[string]string
}

func NewWriter(config WriterConfig) *Writer {
	if config.TempSuffix == "" {
		config.TempSuffix = DefaultWriterConfig().TempSuffix
	}
	return &Writer{config: config, held: make(map[string]string)}
}

// WriteFile atomically replaces path with data, keeping the existing mode.
func (w *Writer) WriteFile(path string, data []byte) error {
	if err := w.lock(path); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer w.unlock(path)

	mode := os.FileMode(0o644)
	info, statErr := os.Stat(path)
	if statErr == nil {
		mode = info.Mode().Perm()
		if w.config.Backup {
			if err := backup(path, mode); err != nil {
				return fmt.Errorf("backup %s: %w", path, err)
			}
		}
	}

	tmp := path + w.config.TempSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if w.config.Fsync {
		if err := f.Sync(); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("sync %s: %w", tmp, err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (w *Writer) lock(path string) error {
	lockPath := path + ".lock"
	deadline := time.Now().Add(w.config.LockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			w.mu.Lock()
			w.held[path] = lockPath
			w.mu.Unlock()
			return nil
		}
		if !os.IsExist(err) {
			return err
		}
		if stale(lockPath) {
			os.Remove(lockPath)
			continue
		}
		if !time.Now().Before(deadline) {
			return ErrLockTimeout
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func (w *Writer) unlock(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if lockPath, ok := w.held[path]; ok {
		os.Remove(lockPath)
		delete(w.held, path)
	}
}

// Cleanup drops every lock still held, for use on interrupt.
func (w *Writer) Cleanup() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, lockPath := range w.held {
		os.Remove(lockPath)
		delete(w.held, path)
	}
}

// stale reports whether a lock file belongs to a process that is gone.
// A lock without a PID is stale once it is older than a second; younger
// ones may still be in the middle of being written.
func stale(lockPath string) bool {
	content, err := os.ReadFile(lockPath)
	if err != nil {
		return os.IsNotExist(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		info, statErr := os.Stat(lockPath)
		return statErr == nil && time.Since(info.ModTime()) > time.Second
	}
	return pid != os.Getpid() && !processAlive(pid)
}

func backup(path string, mode os.FileMode) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s.%s.bak", filepath.Base(path), time.Now().Format("20060102-150405"))
	return os.WriteFile(filepath.Join(filepath.Dir(path), name), content, mode)
}
