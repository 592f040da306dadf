package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const predictEndpoint = "/predict"

// PredictRequest is the body of POST /predict
type PredictRequest struct {
	Features []float64 `json:"features"`
}

// Prediction is the resource usage predicted for one feature vector
type Prediction struct {
	CPUUtilization float64 `json:"CPU_utilization"`
	MemoryUsage    float64 `json:"Memory_usage"`
	DiskIOMBps     float64 `json:"Disk_IO_MBps"`
	NetworkBwMBps  float64 `json:"Network_bw_MBps"`
}

// APIError is a non-200 answer from the server
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("resforecast returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("resforecast returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client for the resforecast prediction endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every Predict call. The HTTP client itself is left
// untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the server at baseURL, e.g. "http://127.0.0.1:5000"
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict sends one feature vector, in the server's schema order, and returns
// the four predicted metrics.
func (c *Client) Predict(ctx context.Context, features []float64) (Prediction, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(PredictRequest{Features: features})
	if err != nil {
		return Prediction{}, errors.Wrap(err, "Error while constructing json request to resforecast")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictEndpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, errors.Wrap(err, "Error while building an HTTP request for the resforecast endpoint")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "Error while performing an HTTP request to the resforecast endpoint")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, errors.Wrap(err, "Error while reading the content of an HTTP response from resforecast")
	}

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, decodeAPIError(resp.StatusCode, respBody)
	}

	var prediction Prediction
	if err := json.Unmarshal(respBody, &prediction); err != nil {
		return Prediction{}, errors.Wrap(err, "Error while converting json response from resforecast")
	}
	return prediction, nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Error.Code
		apiErr.Message = payload.Error.Message
	}
	return apiErr
}
