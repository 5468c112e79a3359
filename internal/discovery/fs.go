package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoPlans indicates that no plan files were found during discovery.
var ErrNoPlans = errors.New("no plan files discovered")

// Plans returns plan file paths. An explicit path is validated and
// returned as given. Otherwise *.plan.json in the root and plans/*.json
// underneath it are globbed, sorted lexicographically.
func Plans(root string, explicit string) ([]string, error) {
	if explicit != "" {
		return resolveExplicit(root, explicit)
	}

	matches := make(map[string]struct{})
	addMatches := func(pattern string) error {
		found, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range found {
			matches[m] = struct{}{}
		}
		return nil
	}

	if err := addMatches(filepath.Join(root, "*.plan.json")); err != nil {
		return nil, err
	}
	if err := addMatches(filepath.Join(root, "plans", "*.json")); err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, ErrNoPlans
	}

	paths := make([]string, 0, len(matches))
	for p := range matches {
		paths = append(paths, mustRelOrClean(root, p))
	}
	sort.Strings(paths)
	return paths, nil
}

func resolveExplicit(root, input string) ([]string, error) {
	cleaned := input
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(root, cleaned)
	}
	info, err := os.Stat(cleaned)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("plan file %q not found", input)
		}
		return nil, fmt.Errorf("stat %q: %w", input, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plan file %q is a directory", input)
	}
	return []string{mustRelOrClean(root, cleaned)}, nil
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
