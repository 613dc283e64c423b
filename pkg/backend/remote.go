package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/patch"
	"github.com/grovetools/sheetsync/version"
	"github.com/sirupsen/logrus"
)

// unixBaseURL is the dummy host used for unix socket HTTP requests.
// The actual connection goes through the socket, not this URL.
const unixBaseURL = "http://unix"

// RemoteClient implements Client over the backend's HTTP API.
type RemoteClient struct {
	httpClient *http.Client
	baseURL    string
	endpoint   string
	logger     *logrus.Entry
}

// NewRemoteClient creates a RemoteClient that dials the backend's unix socket.
func NewRemoteClient(socketPath string, dialTimeout time.Duration) *RemoteClient {
	dialer := &net.Dialer{Timeout: dialTimeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", socketPath)
		},
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	return newRemoteClient(transport, unixBaseURL, socketPath)
}

// NewHTTPClient creates a RemoteClient for a backend listening on TCP.
func NewHTTPClient(baseURL string, dialTimeout time.Duration) *RemoteClient {
	dialer := &net.Dialer{Timeout: dialTimeout}
	transport := &http.Transport{
		DialContext:     dialer.DialContext,
		MaxIdleConns:    10,
		IdleConnTimeout: 90 * time.Second,
	}
	base := strings.TrimRight(baseURL, "/")
	return newRemoteClient(transport, base, base)
}

func newRemoteClient(transport *http.Transport, baseURL, endpoint string) *RemoteClient {
	return &RemoteClient{
		// No overall timeout: a round-trip lasts as long as the backend takes.
		httpClient: &http.Client{Transport: transport},
		baseURL:    baseURL,
		endpoint:   endpoint,
		logger:     logrus.NewEntry(logrus.StandardLogger()),
	}
}

// WithLogger sets the logger used for stream diagnostics.
func (c *RemoteClient) WithLogger(logger *logrus.Entry) *RemoteClient {
	c.logger = logger
	return c
}

// Invoke posts the command's arguments to /api/invoke/{name}.
func (c *RemoteClient) Invoke(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/invoke/"+url.PathEscape(name), bytes.NewReader(emptyArgs(args)))
	if err != nil {
		return nil, errors.TransportFailed(name, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.TransportFailed(name, err).WithDetail("endpoint", c.endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.TransportFailed(name, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.BackendRejected(name, rejectionReason(resp.StatusCode, body)).
			WithDetail("status", resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, errors.TransportFailed(name, fmt.Errorf("response is not JSON"))
	}
	return json.RawMessage(body), nil
}

func rejectionReason(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

// IsRunning returns true if the backend answers /health.
func (c *RemoteClient) IsRunning() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Stream subscribes to pushed patches via Server-Sent Events on /api/stream.
func (c *RemoteClient) Stream(ctx context.Context) (<-chan patch.Patch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.BackendUnavailable(c.endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.BackendUnavailable(c.endpoint, fmt.Errorf("stream returned status %d", resp.StatusCode))
	}

	ch := make(chan patch.Patch, 16)

	go func() {
		defer resp.Body.Close()
		defer close(ch)

		scanner := bufio.NewScanner(resp.Body)
		// Whole-document patches can be large; the default 64KB token limit is not enough.
		buf := make([]byte, 0, 4*1024*1024)
		scanner.Buffer(buf, 10*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()

			if strings.HasPrefix(line, ":") || line == "" {
				continue
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			p, err := patch.Decode([]byte(strings.TrimPrefix(line, "data: ")))
			if err != nil {
				c.logger.WithError(err).WithField("code", errors.GetCode(err)).Error("Dropping malformed pushed patch")
				continue
			}

			select {
			case ch <- p:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			c.logger.WithError(err).Debug("Patch stream ended")
		}
	}()

	return ch, nil
}

// Close cleans up any resources used by the client.
func (c *RemoteClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

var _ Client = (*RemoteClient)(nil)
