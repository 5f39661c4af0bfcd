package peloton

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/seungjunone/peloton-data-explorer/internal/domain"
	"github.com/seungjunone/peloton-data-explorer/internal/ports"
)

const (
	DefaultBaseURL = "https://api.onepeloton.com"

	authPath         = "/auth/login"
	userOverviewPath = "/api/user/%s/overview"
	workoutsPath     = "/api/user/%s/workouts"
	workoutPath      = "/api/workout/%s"

	// The overview endpoint rejects requests without this header.
	platformHeader = "Peloton-Platform"
	platformValue  = "web"

	sessionCookieName = "peloton_session_id"

	workoutsPageSize = 100
	maxResponseBytes = 8 << 20
)

// Client talks to the Peloton public API. The cookie jar on HTTPClient
// carries the authenticated session across calls; Authenticate fills it,
// UseSession primes it from a stored session.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.FitnessAPI = (*Client)(nil)

func NewClient(baseURL string, requestTimeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		BaseURL:        baseURL,
		HTTPClient:     &http.Client{Jar: jar},
		RequestTimeout: requestTimeout,
	}, nil
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type loginResponse struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

type workoutsPage struct {
	Data      []domain.Document `json:"data"`
	PageCount int               `json:"page_count"`
}

// Authenticate posts credentials to the login endpoint and returns the
// session parsed from the response body. The transport cookie jar picks up
// the session cookie from the response automatically.
func (c *Client) Authenticate(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if !creds.Complete() {
		return domain.Session{}, domain.ErrMissingCredentials
	}

	body, err := json.Marshal(loginRequest{
		UsernameOrEmail: creds.Username,
		Password:        creds.Password,
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("encode login request: %w", err)
	}

	endpoint, err := c.buildURL(authPath, nil)
	if err != nil {
		return domain.Session{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Session{}, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return domain.Session{}, fmt.Errorf("request login: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp.StatusCode) {
		return domain.Session{}, fmt.Errorf("login: %w", decodeAPIError(resp))
	}

	var payload loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.Session{}, fmt.Errorf("decode login response: %w", err)
	}
	if payload.UserID == "" {
		return domain.Session{}, errors.New("login response missing user_id")
	}

	return domain.Session{
		UserID:    payload.UserID,
		SessionID: payload.SessionID,
	}, nil
}

// UseSession replays a stored session ID as the session cookie so fetches
// can run without re-authenticating.
func (c *Client) UseSession(session domain.Session) error {
	if !session.Valid() {
		return domain.ErrSessionNotFound
	}
	if session.SessionID == "" {
		return nil
	}

	base, err := url.Parse(c.baseURL())
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}

	jar := c.httpClient().Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return fmt.Errorf("create cookie jar: %w", err)
		}
		c.httpClient().Jar = jar
	}

	jar.SetCookies(base, []*http.Cookie{{
		Name:  sessionCookieName,
		Value: session.SessionID,
		Path:  "/",
	}})

	return nil
}

func (c *Client) FetchUserOverview(ctx context.Context, userID string) (domain.Document, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	var doc domain.Document
	headers := http.Header{platformHeader: []string{platformValue}}
	if err := c.getJSON(ctx, fmt.Sprintf(userOverviewPath, url.PathEscape(userID)), nil, headers, &doc); err != nil {
		return nil, fmt.Errorf("user overview: %w", err)
	}

	return doc, nil
}

func (c *Client) FetchWorkoutDetail(ctx context.Context, workoutID string) (domain.Document, error) {
	if workoutID == "" {
		return nil, errors.New("workout id is required")
	}

	var doc domain.Document
	if err := c.getJSON(ctx, fmt.Sprintf(workoutPath, url.PathEscape(workoutID)), nil, nil, &doc); err != nil {
		return nil, fmt.Errorf("workout detail: %w", err)
	}

	return doc, nil
}

// FetchAllWorkouts walks the paginated workouts endpoint: page 0 reports the
// total page count, pages 1..page_count-1 follow sequentially, and each
// page's data is appended in request order. Any page failing discards the
// pages already fetched; there is no partial result.
func (c *Client) FetchAllWorkouts(ctx context.Context, userID string) ([]domain.Document, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	first, err := c.fetchWorkoutsPage(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if first.PageCount < 0 {
		return nil, fmt.Errorf("workouts page 0: invalid page_count %d", first.PageCount)
	}

	// page_count is server-supplied; size the slice from what page 0 actually
	// returned rather than trusting it for an allocation.
	workouts := make([]domain.Document, 0, len(first.Data))
	workouts = append(workouts, first.Data...)

	for page := 1; page < first.PageCount; page++ {
		next, err := c.fetchWorkoutsPage(ctx, userID, page)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, next.Data...)
	}

	return workouts, nil
}

func (c *Client) fetchWorkoutsPage(ctx context.Context, userID string, page int) (workoutsPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(workoutsPageSize))
	query.Set("page", strconv.Itoa(page))

	var payload workoutsPage
	if err := c.getJSON(ctx, fmt.Sprintf(workoutsPath, url.PathEscape(userID)), query, nil, &payload); err != nil {
		return workoutsPage{}, fmt.Errorf("workouts page %d: %w", page, err)
	}

	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, headers http.Header, target any) error {
	endpoint, err := c.buildURL(path, query)
	if err != nil {
		return err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp.StatusCode) {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// decodeAPIError turns a non-2xx response into a *domain.APIError, pulling a
// human-readable message from the body's "message" or "error" field when the
// body is JSON, and falling back to the raw text otherwise.
func decodeAPIError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.APIError{StatusCode: resp.StatusCode}
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err == nil {
		for _, key := range []string{"message", "error"} {
			if value, ok := payload[key]; ok && value != nil {
				return &domain.APIError{StatusCode: resp.StatusCode, Message: fmt.Sprint(value)}
			}
		}
	}

	return &domain.APIError{StatusCode: resp.StatusCode, Message: truncate(string(raw), 200)}
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.baseURL())
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	joined := base.JoinPath(path)
	if len(query) > 0 {
		joined.RawQuery = query.Encode()
	}

	return joined.String(), nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.RequestTimeout)
}

func statusOK(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}

	// Back off to a rune boundary so a multi-byte sequence is never split.
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
