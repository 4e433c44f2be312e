package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/iso-gateway/internal/iso20022"
)

// externalCheckTimeout bounds one conformance call so a slow checker cannot
// stall unrelated validations.
const externalCheckTimeout = 10 * time.Second

// ExternalResult is the response of the external conformance service.
type ExternalResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type externalCheckRequest struct {
	Message     string `json:"message"`
	MessageType string `json:"messageType"`
}

// ExternalChecker submits generated documents to an external conformance
// endpoint. Each check is an independent, cancellable call; failures are
// reported to the caller, which degrades them to warnings.
type ExternalChecker struct {
	endpoint string
	client   *http.Client
}

// NewExternalChecker creates a checker for the given endpoint URL.
func NewExternalChecker(endpoint string) *ExternalChecker {
	return &ExternalChecker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: externalCheckTimeout},
	}
}

// Check submits the document and returns the external verdict. No retries
// are performed; a failed call is returned as an error.
func (c *ExternalChecker) Check(ctx context.Context, xml string, mt iso20022.MessageType) (*ExternalResult, error) {
	body, err := json.Marshal(externalCheckRequest{Message: xml, MessageType: string(mt)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, externalCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result ExternalResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}
