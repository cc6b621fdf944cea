/*
Package gcal fetches shift events from a Google Calendar.

PURPOSE:
  The calendar is the source of truth for the shop's schedule: each event is
  one shift, with employees attached as attendees or named in the title.
  This package authenticates via OAuth2, pages through the events list for a
  date range, and normalizes the results into payroll.ShiftEvent values.

NORMALIZATION AT THE BOUNDARY:
  - start/end keep the timed form ("dateTime") when present, falling back to
    the all-day form ("date"); the payroll Normalizer handles both.
  - resource-room attendees are dropped; human attendees are reduced to
    email + response status (the status is carried but never consulted).

TOKEN HANDLING:
  Tokens are persisted to a JSON file. A saving token source rewrites the
  file whenever the refresh flow mints a new access token, so a long-lived
  refresh token keeps working across restarts. Obtaining the initial token
  (the consent flow) is an operator task outside this package.

SEE ALSO:
  - payroll/types.go: ShiftEvent and Attendee
  - cmd/server: wiring and configuration
*/
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/brewshift/payout/payroll"
)

const (
	eventsBaseURL = "https://www.googleapis.com/calendar/v3"

	authURL  = "https://accounts.google.com/o/oauth2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"

	scopeCalendarReadonly = "https://www.googleapis.com/auth/calendar.readonly"

	// maxResults per page; Google caps this at 2500 for events.list.
	pageSize = 2500
)

// Config holds the OAuth2 client credentials and token location.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
	CalendarID   string
}

// Client is an authenticated Google Calendar API client.
type Client struct {
	httpClient *http.Client
	calendarID string
	baseURL    string
}

// NewClient builds a client from the stored token at cfg.TokenPath.
// Refreshed tokens are persisted back to the same file.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	tok, err := loadToken(cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("loading calendar token: %w", err)
	}

	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{scopeCalendarReadonly},
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	ts := oc.TokenSource(ctx, tok)
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{
		httpClient: oauth2.NewClient(ctx, &savingTokenSource{ts: ts, path: cfg.TokenPath}),
		calendarID: calendarID,
		baseURL:    eventsBaseURL,
	}, nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(s.path, tok)
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("decoding token file %s: %w", path, err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// =============================================================================
// EVENT FETCH
// =============================================================================

// apiEvent is the subset of the Google Calendar event resource we consume.
type apiEvent struct {
	ID        string        `json:"id"`
	Summary   string        `json:"summary"`
	Start     apiEventTime  `json:"start"`
	End       apiEventTime  `json:"end"`
	Attendees []apiAttendee `json:"attendees"`
}

type apiAttendee struct {
	Email          string `json:"email"`
	ResponseStatus string `json:"responseStatus"`
	Resource       bool   `json:"resource"`
}

type apiEventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

// value returns the timed form when present, else the all-day form.
func (t apiEventTime) value() string {
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// eventsListResponse is the paged events.list response.
type eventsListResponse struct {
	Items         []apiEvent `json:"items"`
	NextPageToken string     `json:"nextPageToken"`
}

// FetchEvents returns all shift events between timeMin and timeMax
// (RFC 3339 bounds), recurring events expanded, ordered by start time.
func (c *Client) FetchEvents(ctx context.Context, timeMin, timeMax time.Time) ([]payroll.ShiftEvent, error) {
	params := url.Values{
		"timeMin":      {timeMin.Format(time.RFC3339)},
		"timeMax":      {timeMax.Format(time.RFC3339)},
		"singleEvents": {"true"},
		"orderBy":      {"startTime"},
		"maxResults":   {fmt.Sprint(pageSize)},
		"fields":       {"items(id,summary,start,end,attendees(email,responseStatus,resource)),nextPageToken"},
	}

	var out []payroll.ShiftEvent
	for {
		endpoint := fmt.Sprintf("%s/calendars/%s/events?%s",
			c.baseURL, url.PathEscape(c.calendarID), params.Encode())

		page, err := c.fetchPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			out = append(out, normalizeEvent(item))
		}

		if page.NextPageToken == "" {
			return out, nil
		}
		params.Set("pageToken", page.NextPageToken)
	}
}

func (c *Client) fetchPage(ctx context.Context, endpoint string) (*eventsListResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar API request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar API error %d: %s", resp.StatusCode, string(body))
	}

	var page eventsListResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decoding calendar response: %w", err)
	}
	return &page, nil
}

// normalizeEvent maps an API event into the engine's ShiftEvent shape,
// dropping resource-room attendees.
func normalizeEvent(item apiEvent) payroll.ShiftEvent {
	var attendees []payroll.Attendee
	for _, a := range item.Attendees {
		if a.Resource || a.Email == "" {
			continue
		}
		attendees = append(attendees, payroll.Attendee{
			Email:          a.Email,
			ResponseStatus: a.ResponseStatus,
		})
	}

	return payroll.ShiftEvent{
		ID:        item.ID,
		Title:     item.Summary,
		Start:     item.Start.value(),
		End:       item.End.value(),
		Attendees: attendees,
	}
}
