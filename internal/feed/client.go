// Package feed fetches observation records from the upstream
// real-time data API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/langouL/meteopad/internal/domain"
)

// Fetcher is implemented by Client and by test doubles.
type Fetcher interface {
	FetchObservations(ctx context.Context) ([]domain.Observation, error)
}

type Client struct {
	baseURL    string
	limit      int64
	httpClient *http.Client
}

func NewClient(baseURL string, limit int64, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		limit:      limit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchObservations downloads the full observation feed and returns it
// sorted newest first.
func (c *Client) FetchObservations(ctx context.Context) ([]domain.Observation, error) {
	endpoint := fmt.Sprintf("%s/donnees?%s", c.baseURL,
		url.Values{"limit": {strconv.FormatInt(c.limit, 10)}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var obs []domain.Observation
	if err := json.NewDecoder(resp.Body).Decode(&obs); err != nil {
		return nil, fmt.Errorf("failed to decode observations: %w", err)
	}

	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].DateTime.After(obs[j].DateTime.Time)
	})
	return obs, nil
}
