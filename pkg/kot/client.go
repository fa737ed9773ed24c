package kot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kotlens/kotlens/pkg/attendance"
	"github.com/kotlens/kotlens/pkg/period"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.kingtime.jp/v1.0"
	DefaultTimeout = 30 * time.Second

	maxErrorBody = 4096
)

var ErrMissingAPIKey = errors.New("KOT API key is not configured")

// UpstreamError is returned when the attendance API answers with a non-2xx status.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("KOT API %s responded with status %d", e.Endpoint, e.StatusCode)
}

type Client interface {
	// GET /employees
	FetchEmployees(ctx context.Context) ([]attendance.Employee, error)
	// GET /monthly-workings?date=YYYY-MM
	FetchMonthlyWorkings(ctx context.Context, year, month int) ([]attendance.RawMonthlyRecord, error)
	// GET /leave-managements[/{leaveCode}], passed through untouched
	FetchLeaveManagements(ctx context.Context, leaveCode string) (json.RawMessage, error)
}

type ClientImpl struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	location *time.Location
}

// NewClient builds a client that sends the API key as a bearer token. End
// dates of monthly workings are interpreted in loc.
func NewClient(baseURL string, apiKey string, timeout time.Duration, loc *time.Location) *ClientImpl {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if loc == nil {
		loc = time.UTC
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	httpClient.Timeout = timeout

	return &ClientImpl{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     httpClient,
		location: loc,
	}
}

func (c *ClientImpl) FetchEmployees(ctx context.Context) ([]attendance.Employee, error) {
	var dtos []employeeDTO
	if err := c.get(ctx, "/employees", nil, &dtos); err != nil {
		return nil, err
	}
	employees := make([]attendance.Employee, 0, len(dtos))
	for _, dto := range dtos {
		employees = append(employees, employeeFromDTO(dto))
	}
	log.Debugf("Fetched %d employees", len(employees))
	return employees, nil
}

func (c *ClientImpl) FetchMonthlyWorkings(ctx context.Context, year, month int) ([]attendance.RawMonthlyRecord, error) {
	query := url.Values{"date": {period.MonthKey(year, month)}}
	var dtos []monthlyWorkingDTO
	if err := c.get(ctx, "/monthly-workings", query, &dtos); err != nil {
		return nil, err
	}
	records := make([]attendance.RawMonthlyRecord, 0, len(dtos))
	for _, dto := range dtos {
		records = append(records, recordFromDTO(dto, c.location))
	}
	log.Debugf("Fetched %d monthly workings for %s", len(records), period.MonthKey(year, month))
	return records, nil
}

func (c *ClientImpl) FetchLeaveManagements(ctx context.Context, leaveCode string) (json.RawMessage, error) {
	endpoint := "/leave-managements"
	if leaveCode != "" {
		endpoint += "/" + url.PathEscape(leaveCode)
	}
	var body json.RawMessage
	if err := c.get(ctx, endpoint, nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

func (c *ClientImpl) get(ctx context.Context, endpoint string, query url.Values, target any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("Failed to call KOT API %s: %v", endpoint, err)
		return fmt.Errorf("failed to call KOT API %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		log.Errorf("Failed to decode KOT API %s response: %v", endpoint, err)
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
