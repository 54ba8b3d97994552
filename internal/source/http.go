package source

import (
	"context"
	"fmt"
	"image"
	"net/http"
)

// HTTPSource fetches frames from {BaseURL}frame_NNNN{Format}.
type HTTPSource struct {
	BaseURL string
	Format  string
	Client  *http.Client
}

func NewHTTPSource(baseURL, format string) *HTTPSource {
	return &HTTPSource{BaseURL: baseURL, Format: format, Client: http.DefaultClient}
}

func (s *HTTPSource) LoadFrame(ctx context.Context, index int) (image.Image, error) {
	url := FrameURL(s.BaseURL, index, s.Format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return img, nil
}
