package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/neuralnomads/nomadhost"
)

// APIClient provides HTTP client functionality to communicate with a
// running nomadhost daemon.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a new API client.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = "http://localhost:8080/api"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// IsReachable checks if the daemon is running and reachable.
func (c *APIClient) IsReachable() bool {
	resp, err := c.client.Get(c.baseURL + "/status")
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// GetStatus fetches the current CLI status.
func (c *APIClient) GetStatus() (nomadhost.Status, error) {
	var st nomadhost.Status
	resp, err := c.client.Get(c.baseURL + "/status")
	if err != nil {
		return st, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, err
	}
	return st, nil
}

// Start asks the daemon to (re)launch the CLI.
func (c *APIClient) Start(dev bool) error {
	return c.post("/start", dev, nil)
}

// Stop asks the daemon to terminate the CLI.
func (c *APIClient) Stop() error {
	resp, err := c.client.Post(c.baseURL+"/stop", "application/json", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	return nil
}

// Restart performs a stop-then-start and returns the immediate
// post-start snapshot.
func (c *APIClient) Restart(dev bool) (nomadhost.Status, error) {
	var st nomadhost.Status
	if err := c.post("/restart", dev, &st); err != nil {
		return st, err
	}
	return st, nil
}

func (c *APIClient) post(path string, dev bool, out any) error {
	url := c.baseURL + path
	if dev {
		url += "?dev=1"
	}
	resp, err := c.client.Post(url, "application/json", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("API error: status %d", resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
