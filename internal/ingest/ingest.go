// Package ingest acquires the repository to be indexed: clone from a
// git remote, extract from an uploaded zip archive, or wipe everything
// for a fresh start.
//
// Each acquisition replaces prior state wholesale. The repo and index
// directories are treated as disposable caches; nothing in them
// survives a new load or a reset.
package ingest

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Common errors
var (
	// ErrCloneFailed wraps git clone failures; the message carries the
	// tail of git's stderr.
	ErrCloneFailed = errors.New("git clone failed")

	// ErrBadArchive is returned for archives that cannot be opened or
	// that try to escape the extraction root.
	ErrBadArchive = errors.New("invalid archive")
)

// Store owns the on-disk layout: a repo directory holding the corpus
// and an index directory holding the persisted vector index.
type Store struct {
	RepoDir  string
	IndexDir string
}

// NewStore creates a Store rooted at dataDir, using the conventional
// repo/ and index/ subdirectories.
func NewStore(dataDir string) *Store {
	return &Store{
		RepoDir:  filepath.Join(dataDir, "repo"),
		IndexDir: filepath.Join(dataDir, "index"),
	}
}

// CloneRepo clears prior state and clones repoURL into the repo
// directory. It returns the path the corpus was cloned to.
func (s *Store) CloneRepo(ctx context.Context, repoURL string) (string, error) {
	if err := s.clear(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.RepoDir, 0o755); err != nil {
		return "", fmt.Errorf("create repo dir: %w", err)
	}

	target := filepath.Join(s.RepoDir, repoName(repoURL))

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", repoURL, target)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", ErrCloneFailed, strings.TrimSpace(stderr.String()))
	}

	return target, nil
}

// repoName derives a directory name from the clone URL, stripping any
// .git suffix. Unparseable URLs fall back to a fixed name.
func repoName(repoURL string) string {
	parsed, err := url.Parse(repoURL)
	if err != nil || parsed.Path == "" {
		return "repo"
	}
	name := strings.TrimSuffix(filepath.Base(parsed.Path), ".git")
	if name == "" || name == "." || name == "/" {
		return "repo"
	}
	return name
}

// ExtractArchive clears prior state and extracts the zip archive at
// archivePath into the repo directory. It returns the repo directory.
func (s *Store) ExtractArchive(archivePath string) (string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer func() { _ = reader.Close() }()

	if err := s.clear(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.RepoDir, 0o755); err != nil {
		return "", fmt.Errorf("create repo dir: %w", err)
	}

	for _, file := range reader.File {
		if err := s.extractOne(file); err != nil {
			return "", err
		}
	}

	return s.RepoDir, nil
}

func (s *Store) extractOne(file *zip.File) error {
	// Reject entries that would land outside the repo directory
	dest := filepath.Join(s.RepoDir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(dest, filepath.Clean(s.RepoDir)+string(os.PathSeparator)) {
		return fmt.Errorf("%w: entry escapes archive root: %s", ErrBadArchive, file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", file.Name, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %v", ErrBadArchive, file.Name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %s: %w", file.Name, err)
	}
	return nil
}

// Reset removes the repo and index directories entirely.
func (s *Store) Reset() error {
	return s.clear()
}

func (s *Store) clear() error {
	for _, dir := range []string{s.RepoDir, s.IndexDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clear %s: %w", dir, err)
		}
	}
	return nil
}

// HasRepo reports whether a loaded corpus is present.
func (s *Store) HasRepo() bool {
	entries, err := os.ReadDir(s.RepoDir)
	return err == nil && len(entries) > 0
}
