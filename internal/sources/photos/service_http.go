package photos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://photoslibrary.googleapis.com/v1"

// TokenFunc supplies the bearer token for each request.
type TokenFunc func() (string, error)

// HTTPService talks to the photo-library REST API.
type HTTPService struct {
	baseURL string
	client  *http.Client
	token   TokenFunc
}

// NewHTTPService returns a Service over the real REST API.
func NewHTTPService(token TokenFunc) *HTTPService {
	return &HTTPService{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 5 * time.Minute},
		token:   token,
	}
}

func (s *HTTPService) authorize(req *http.Request) error {
	tok, err := s.token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

type searchRequest struct {
	PageSize  int            `json:"pageSize"`
	PageToken string         `json:"pageToken,omitempty"`
	Filters   map[string]any `json:"filters"`
}

type mediaItem struct {
	ID            string `json:"id"`
	Filename      string `json:"filename"`
	MimeType      string `json:"mimeType"`
	BaseURL       string `json:"baseUrl"`
	MediaMetadata struct {
		CreationTime string `json:"creationTime"`
	} `json:"mediaMetadata"`
}

type searchResponse struct {
	MediaItems    []mediaItem `json:"mediaItems"`
	NextPageToken string      `json:"nextPageToken"`
}

// SearchVideos fetches one page of video items.
func (s *HTTPService) SearchVideos(ctx context.Context, pageToken string) (*Page, error) {
	body, err := json.Marshal(searchRequest{
		PageSize:  100,
		PageToken: pageToken,
		Filters: map[string]any{
			"mediaTypeFilter": map[string]any{"mediaTypes": []string{"VIDEO"}},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/mediaItems:search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := s.authorize(req); err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("remote returned %s: %s", resp.Status, msg)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("malformed search page: %w", err)
	}

	page := &Page{NextToken: sr.NextPageToken}
	for _, mi := range sr.MediaItems {
		page.Items = append(page.Items, MediaItem{
			ID:           mi.ID,
			Filename:     mi.Filename,
			MimeType:     mi.MimeType,
			CreationTime: mi.MediaMetadata.CreationTime,
		})
	}
	return page, nil
}

// Fetch streams a video's bytes. The item's download URL is resolved first;
// the "=dv" suffix selects the video bytes rather than a thumbnail.
func (s *HTTPService) Fetch(ctx context.Context, itemID string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/mediaItems/"+itemID, nil)
	if err != nil {
		return nil, 0, err
	}
	if err := s.authorize(req); err != nil {
		return nil, 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("remote returned %s: %s", resp.Status, msg)
	}

	var mi mediaItem
	if err := json.NewDecoder(resp.Body).Decode(&mi); err != nil {
		_ = resp.Body.Close()
		return nil, 0, fmt.Errorf("malformed media item: %w", err)
	}
	_ = resp.Body.Close()

	if mi.BaseURL == "" {
		return nil, 0, fmt.Errorf("media item %q has no download URL", itemID)
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, mi.BaseURL+"=dv", nil)
	if err != nil {
		return nil, 0, err
	}
	if err := s.authorize(dlReq); err != nil {
		return nil, 0, err
	}

	dlResp, err := s.client.Do(dlReq)
	if err != nil {
		return nil, 0, err
	}
	if dlResp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(dlResp.Body, 2048))
		_ = dlResp.Body.Close()
		return nil, 0, fmt.Errorf("remote returned %s: %s", dlResp.Status, msg)
	}
	return dlResp.Body, dlResp.ContentLength, nil
}
