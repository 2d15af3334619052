package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookcart/domain/identity"
)

type CustomerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCustomerClient creates a client for the customer service.
func NewCustomerClient(baseURL string, timeout time.Duration) *CustomerClient {
	return &CustomerClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type customerEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *CustomerClient) Exists(ctx context.Context, customerID int64) (bool, error) {
	url := fmt.Sprintf("%s/customers/%d/", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", identity.ErrSourceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", identity.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var envelope customerEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return false, fmt.Errorf("%w: malformed response: %v", identity.ErrSourceUnavailable, err)
		}
		if !envelope.Success {
			return false, fmt.Errorf("%w: unexpected envelope", identity.ErrSourceUnavailable)
		}
		return true, nil
	case http.StatusNotFound:
		// Authoritative answer: the customer does not exist.
		return false, nil
	default:
		return false, fmt.Errorf("%w: unexpected status %d", identity.ErrSourceUnavailable, resp.StatusCode)
	}
}

var _ identity.IdentitySource = (*CustomerClient)(nil)
