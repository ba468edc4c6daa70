package batch

import (
	"fmt"
	"os"
	"path/filepath"
)

// imageExtensions are matched exactly as given; no case folding.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// Discover lists the image files of dir, non-recursively. Files whose
// extension is not in the fixed set are excluded. No particular order is
// guaranteed beyond what the directory listing yields.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[filepath.Ext(entry.Name())] {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	return images, nil
}
