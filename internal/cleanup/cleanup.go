// Package cleanup implements pruning of exported query reports.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// reportExts lists the files an export may leave behind.
var reportExts = []string{".html", ".svg", ".png"}

type export struct {
	name    string
	modTime time.Time
}

// listExports returns the report files in dir, oldest first. Other files and
// subdirectories are ignored.
func listExports(dir string) ([]export, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading reports directory: %w", err)
	}

	var files []export
	for _, entry := range entries {
		if entry.IsDir() || !isReport(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, export{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].name < files[j].name
		}
		return files[i].modTime.Before(files[j].modTime)
	})
	return files, nil
}

func isReport(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range reportExts {
		if ext == e {
			return true
		}
	}
	return false
}

// PruneByAge removes report files last modified more than maxAgeDays ago.
// If dryRun is true, nothing is deleted; the function only returns the names
// that would be removed.
func PruneByAge(dir string, maxAgeDays int, dryRun bool) ([]string, error) {
	files, err := listExports(dir)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	var old []string
	for _, f := range files {
		if f.modTime.Before(cutoff) {
			old = append(old, f.name)
		}
	}
	return remove(dir, old, dryRun)
}

// PruneKeepRecent removes all report files except the keep most recently
// modified. If dryRun is true, nothing is deleted.
func PruneKeepRecent(dir string, keep int, dryRun bool) ([]string, error) {
	files, err := listExports(dir)
	if err != nil {
		return nil, err
	}
	if len(files) <= keep {
		return nil, nil
	}

	var names []string
	for _, f := range files[:len(files)-keep] {
		names = append(names, f.name)
	}
	return remove(dir, names, dryRun)
}

func remove(dir string, names []string, dryRun bool) ([]string, error) {
	var pruned []string
	for _, name := range names {
		if !dryRun {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return pruned, fmt.Errorf("removing %s: %w", name, err)
			}
		}
		pruned = append(pruned, name)
	}
	return pruned, nil
}
