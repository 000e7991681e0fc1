package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lixenwraith/attention-era/constants"
)

// StatusError is a non-2xx reply from the endpoint
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("contact endpoint: %d %s", e.Code, e.Message)
}

// Client posts submissions to a contact endpoint
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: constants.ContactRequestTimeout},
	}
}

// Submit validates locally, then posts s
// A 400 from the server for missing fields also yields ErrMissingFields
func (c *Client) Submit(ctx context.Context, s Submission) (*Ack, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+constants.ContactPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, constants.ContactBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		if resp.StatusCode == http.StatusBadRequest && eb.Message == MsgMissingFields {
			return nil, fmt.Errorf("%w: %w", ErrMissingFields, &StatusError{Code: resp.StatusCode, Message: eb.Message})
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: eb.Message}
	}

	var ack Ack
	if err := json.Unmarshal(data, &ack); err != nil {
		return nil, fmt.Errorf("decode ack: %w", err)
	}
	return &ack, nil
}
