// Package directory is the client for the staff directory service, the only
// outbound dependency of this API. The directory classifies users ("manager",
// "staff", ...) and that classification feeds the manager-gated authorization
// policy.
//
// The client is deliberately fail-soft at its own boundary and fail-closed at
// the caller's: every failure mode collapses to the "unknown" classification,
// which the policy engine treats as "not a manager". Failures are logged, never
// propagated, and never retried; a circuit breaker sheds load from a directory
// that is down.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

// StaffTypeUnknown is returned whenever the directory cannot produce a
// classification: unconfigured base URL, transport error, non-success status,
// malformed response, or open circuit breaker.
const StaffTypeUnknown = "unknown"

// defaultTimeout bounds a single directory call.
const defaultTimeout = 5 * time.Second

// Client resolves user IDs to staff classifications via
// GET {base}/staff/{userId}/type. It is owned by the server instance and safe
// for concurrent use; concurrent lookups for the same user are coalesced into
// a single outbound call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[string]
	group      singleflight.Group
	logger     *slog.Logger
}

// NewClient creates a staff directory client for the given base URL. An empty
// base URL is valid and yields StaffTypeUnknown for every lookup, so a
// deployment without a directory degrades to denying manager-gated
// operations. A zero timeout falls back to the 5 second default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "staff-directory",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// StaffType returns the staff classification for the given user ID, or
// StaffTypeUnknown on any failure. It never returns an error; callers must
// treat StaffTypeUnknown as a definitive answer for the request (no retries
// happen here or upstream).
//
// The caller's context bounds the call, so an aborted inbound request aborts
// the in-flight lookup.
func (c *Client) StaffType(ctx context.Context, userID string) string {
	if c.baseURL == "" {
		c.logger.Warn("staff directory base URL is not configured")
		return StaffTypeUnknown
	}

	result, err, _ := c.group.Do(strings.ToLower(userID), func() (any, error) {
		return c.breaker.Execute(func() (string, error) {
			return c.fetch(ctx, userID)
		})
	})
	if err != nil {
		c.logger.Warn("staff type lookup failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return StaffTypeUnknown
	}

	return result.(string)
}

// staffTypeResponse is the directory's response body for a type lookup.
type staffTypeResponse struct {
	StaffType string `json:"staffType"`
}

func (c *Client) fetch(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/staff/%s/type", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("building staff directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling staff directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("staff directory returned %d", resp.StatusCode)
	}

	var payload staffTypeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding staff directory response: %w", err)
	}

	staffType := strings.TrimSpace(payload.StaffType)
	if staffType == "" {
		return StaffTypeUnknown, nil
	}
	return staffType, nil
}
