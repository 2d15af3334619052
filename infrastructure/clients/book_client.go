/*
Package clients - HTTP clients for the book and customer services.

Both collaborators speak the same envelope dialect:
{"success": bool, "data": ...} with 404 for a missing resource. Every call
is a single attempt bounded by one fixed timeout; there is no retry and no
circuit breaker. The crucial discipline is the three-way outcome: a clean
404 means the resource does not exist, while a timeout, transport error,
unexpected status or malformed body all mean "unavailable" - the caller
must be able to tell an outage apart from non-existence.
*/
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookcart/domain/catalog"
)

type BookClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBookClient creates a client for the book service. timeout bounds every
// request end to end.
func NewBookClient(baseURL string, timeout time.Duration) *BookClient {
	return &BookClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type bookEnvelope struct {
	Success bool                  `json:"success"`
	Data    *catalog.BookSnapshot `json:"data"`
	Message string                `json:"message"`
}

type catalogEnvelope struct {
	Success bool                   `json:"success"`
	Data    []catalog.BookSnapshot `json:"data"`
	Message string                 `json:"message"`
}

func (c *BookClient) Get(ctx context.Context, bookID int64) (*catalog.BookSnapshot, error) {
	url := fmt.Sprintf("%s/books/%d/", c.baseURL, bookID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var envelope bookEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("%w: malformed response: %v", catalog.ErrSourceUnavailable, err)
		}
		if !envelope.Success || envelope.Data == nil {
			return nil, fmt.Errorf("%w: unexpected envelope", catalog.ErrSourceUnavailable)
		}
		return envelope.Data, nil
	case http.StatusNotFound:
		return nil, catalog.ErrBookNotFound
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", catalog.ErrSourceUnavailable, resp.StatusCode)
	}
}

func (c *BookClient) Catalog(ctx context.Context) ([]catalog.BookSnapshot, error) {
	url := c.baseURL + "/books/catalog/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", catalog.ErrSourceUnavailable, resp.StatusCode)
	}

	var envelope catalogEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", catalog.ErrSourceUnavailable, err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("%w: unexpected envelope", catalog.ErrSourceUnavailable)
	}
	return envelope.Data, nil
}

var _ catalog.BookSnapshotSource = (*BookClient)(nil)
