package story

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// StoryboardsDir is where generated storyboards are kept by default
const StoryboardsDir = "storyboards"

// GenerateStoryboardPath creates a timestamped storyboard filename
func GenerateStoryboardPath() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(StoryboardsDir, fmt.Sprintf("storyboard_%s.yaml", timestamp))
}

// FindLatestStoryboard finds the most recently modified storyboard in dir
func FindLatestStoryboard(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read storyboards directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var found []candidate
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, candidate{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	if len(found) == 0 {
		return "", fmt.Errorf("no storyboard files found in %s", dir)
	}

	// Newest first
	sort.Slice(found, func(i, j int) bool {
		return found[i].modTime.After(found[j].modTime)
	})

	return found[0].path, nil
}
