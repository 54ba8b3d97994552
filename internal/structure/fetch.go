package structure

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const DefaultBaseURL = "https://files.rcsb.org/download"

// Loader yields the atoms of one structure.
type Loader interface {
	Load(ctx context.Context, id string) ([]Atom, error)
}

// Fetcher downloads PDB files from an RCSB-compatible mirror.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		BaseURL: DefaultBaseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// URL returns the download address for a structure id.
func (f *Fetcher) URL(id string) string {
	return fmt.Sprintf("%s/%s.pdb", strings.TrimSuffix(f.BaseURL, "/"), id)
}

func (f *Fetcher) Load(ctx context.Context, id string) ([]Atom, error) {
	if id == "" {
		return nil, fmt.Errorf("не задан идентификатор структуры")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(id), nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("загрузка %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("загрузка %s: HTTP %d", id, resp.StatusCode)
	}
	return ParsePDB(resp.Body)
}

// FileLoader reads a local PDB file; the id argument is ignored.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context, id string) ([]Atom, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParsePDB(f)
}
