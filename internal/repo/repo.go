// Package repo acquires repositories for analysis: URL validation, shallow
// cloning and source-file discovery.
package repo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/codelore/backend/pkg/chunk"
	"github.com/codelore/backend/pkg/logger"
)

var githubURLPattern = regexp.MustCompile(`^https://github\.com/[\w.-]+/[\w.-]+?(\.git)?/?$`)

// ValidateURL accepts public GitHub repository URLs only.
func ValidateURL(url string) error {
	if !githubURLPattern.MatchString(strings.TrimSpace(url)) {
		return fmt.Errorf("invalid repository URL: %q (expected https://github.com/owner/repo)", url)
	}
	return nil
}

// NameFromURL derives a display name from the repository URL.
func NameFromURL(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(url), "/"), ".git")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// CheckoutPath returns where a repository is checked out. Paths are keyed
// by repository ID, not name, so concurrent analyses of equally named
// repositories from different owners never share a worktree.
func CheckoutPath(baseDir string, repoID string) string {
	return filepath.Join(baseDir, repoID)
}

// Clone checks the repository out under baseDir and returns the checkout
// path. A stale checkout from an earlier run is removed first; analysis
// always sees a fresh worktree.
func Clone(ctx context.Context, url string, baseDir string, repoID string) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", err
	}

	path := CheckoutPath(baseDir, repoID)
	if err := os.RemoveAll(path); err != nil {
		return "", fmt.Errorf("failed to remove stale checkout: %w", err)
	}

	logger.Info("[REPO] Cloning", "url", url, "path", path)
	_, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return path, nil
}

// Cleanup removes a checkout after analysis. Extracted records persist in
// Postgres; the worktree is disposable.
func Cleanup(path string) {
	if err := os.RemoveAll(path); err != nil {
		logger.Warn("[REPO] Failed to remove checkout", "path", path, "error", err)
	}
}

// ListSourceFiles walks a checkout and returns paths of files the chunker
// understands, relative to the checkout root.
func ListSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if chunk.Supported(filepath.Ext(path)) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk checkout: %w", err)
	}
	return files, nil
}
