package source

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirSource reads frame files from a local directory.
type DirSource struct {
	Dir    string
	Format string
}

func (s *DirSource) path(index int) string {
	return filepath.Join(s.Dir, FrameName(index, s.Format))
}

func (s *DirSource) LoadFrame(ctx context.Context, index int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path(index))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path(index), err)
	}
	return img, nil
}

// Dimensions reads only the header of frame index.
func (s *DirSource) Dimensions(index int) (int, int, error) {
	f, err := os.Open(s.path(index))
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// ScanFrames lists frame files of the given format in dir, sorted by name.
func ScanFrames(dir, format string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "frame_") && strings.EqualFold(filepath.Ext(name), format) {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Count returns the number of frame files present in the directory.
func (s *DirSource) Count() (int, error) {
	paths, err := ScanFrames(s.Dir, s.Format)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}
