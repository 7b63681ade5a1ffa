package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"skill-sync-backend/internal/domain"
)

var (
	ErrPlatformRequest  = errors.New("platform request failed")
	ErrPlatformResponse = errors.New("invalid platform response")
	ErrProfileNotFound  = errors.New("profile not found")
)

const (
	// Upper bound on a decoded platform payload
	maxResponseBytes = 2 << 20
	// Error bodies are only read for the log line
	maxErrorBodyBytes = 200

	userAgent = "Mozilla/5.0 (compatible; skill-sync-backend/1.0)"
)

// NewHTTPClient is shared by every adapter in a registry
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// StatusError carries the HTTP status of a non-2xx platform response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, e.Body)
}

// doJSON executes req and decodes a 2xx JSON body into out. Non-2xx replies
// come back as a *StatusError wrapped in ErrPlatformResponse.
func doJSON(client *http.Client, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformRequest, err)
	}
	defer func() {
		// Always drain & close to prevent connection leaks
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%w: %w", ErrPlatformResponse, &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrPlatformResponse, err)
	}
	return nil
}

func unavailable(snapshot any, err error) domain.FetchResult {
	return domain.FetchResult{Status: domain.FetchUnavailable, Snapshot: snapshot, Reason: err.Error()}
}

func notFound(snapshot any, err error) domain.FetchResult {
	return domain.FetchResult{Status: domain.FetchNotFound, Snapshot: snapshot, Reason: err.Error()}
}

func strPtr(s string) *string {
	return &s
}
