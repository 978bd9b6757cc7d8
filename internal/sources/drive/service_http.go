package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

// TokenFunc supplies the bearer token for each request.
type TokenFunc func() (string, error)

// HTTPService talks to the file-storage REST API.
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

func (s *HTTPService) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	tok, err := s.token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("remote returned %s: %s", resp.Status, body)
	}
	return resp, nil
}

type fileList struct {
	NextPageToken string `json:"nextPageToken"`
	Files         []Item `json:"files"`
}

// ListPage fetches one page of listing results.
func (s *HTTPService) ListPage(ctx context.Context, query, pageToken string) (*Page, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("pageSize", "100")
	q.Set("fields", "nextPageToken, files(id, name, mimeType, size, modifiedTime)")
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	resp, err := s.get(ctx, s.baseURL+"/files?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var fl fileList
	if err := json.NewDecoder(resp.Body).Decode(&fl); err != nil {
		return nil, fmt.Errorf("malformed listing page: %w", err)
	}
	return &Page{Items: fl.Files, NextToken: fl.NextPageToken}, nil
}

// Fetch streams a regular file's bytes.
func (s *HTTPService) Fetch(ctx context.Context, fileID string) (io.ReadCloser, int64, error) {
	resp, err := s.get(ctx, s.baseURL+"/files/"+url.PathEscape(fileID)+"?alt=media")
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// Export streams a workspace document converted server-side to exportMime.
func (s *HTTPService) Export(ctx context.Context, fileID, exportMime string) (io.ReadCloser, int64, error) {
	q := url.Values{}
	q.Set("mimeType", exportMime)

	resp, err := s.get(ctx, s.baseURL+"/files/"+url.PathEscape(fileID)+"/export?"+q.Encode())
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

// Metadata fetches one item's metadata.
func (s *HTTPService) Metadata(ctx context.Context, fileID string) (*Item, error) {
	q := url.Values{}
	q.Set("fields", "id, name, mimeType, size, modifiedTime")

	resp, err := s.get(ctx, s.baseURL+"/files/"+url.PathEscape(fileID)+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var item Item
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("malformed metadata: %w", err)
	}
	return &item, nil
}
