package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/perks-tracker/constants"
)

// DiscoverStats counts what a Discover call walked over.
type DiscoverStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// Discover expands roots into screenshot paths. A root that is a file is kept
// as given, even with an unknown extension, so the batch reports it. Directories
// are walked recursively and only image files are collected. Results are sorted
// per directory root and duplicates removed.
func Discover(roots []string, skipHidden bool) ([]string, DiscoverStats, error) {
	var stats DiscoverStats
	if len(roots) == 0 {
		return nil, stats, errors.New("no paths provided")
	}

	seen := map[string]struct{}{}
	var out []string
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil {
			return out, stats, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			stats.Scanned++
			stats.Matched++
			add(root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if path != root && skipHidden && isHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				stats.Skipped++
				return nil
			}
			if d.IsDir() {
				return nil
			}
			stats.Scanned++
			if !constants.IsImageExt(filepath.Ext(path)) {
				stats.Skipped++
				return nil
			}
			stats.Matched++
			found = append(found, path)
			return nil
		})
		if err != nil {
			return out, stats, fmt.Errorf("walk %s: %w", root, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return out, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
