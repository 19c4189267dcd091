package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/barberhq/booking-api/internal/model"
)

// HTTPProfileFetcher calls the auth service's /me endpoint with the
// caller's bearer token.
type HTTPProfileFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProfileFetcher(baseURL string) *HTTPProfileFetcher {
	return &HTTPProfileFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (f *HTTPProfileFetcher) FetchProfile(ctx context.Context, token string) (*model.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile request returned status %d", resp.StatusCode)
	}

	var body struct {
		Data model.Identity `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode profile response: %w", err)
	}
	return &body.Data, nil
}
