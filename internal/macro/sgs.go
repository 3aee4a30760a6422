package macro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
)

const (
	// DefaultSGSBaseURL is the Banco Central do Brasil open data endpoint.
	DefaultSGSBaseURL = "https://api.bcb.gov.br"

	sgsDateLayout = "02/01/2006"
)

// SGSClient fetches series from the BCB "Sistema Gerenciador de Séries
// Temporais" JSON API.
type SGSClient struct {
	BaseURL    string
	HTTPClient *http.Client
	// NewBackOff builds the retry policy for one request.
	NewBackOff func() backoff.BackOff
}

// NewSGSClient returns a client with the given per-request timeout. A zero
// timeout disables it.
func NewSGSClient(timeout time.Duration) *SGSClient {
	return &SGSClient{
		BaseURL:    DefaultSGSBaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		NewBackOff: DefaultBackOff,
	}
}

// DefaultBackOff retries with exponential delays for up to a minute.
func DefaultBackOff() backoff.BackOff {
	boff := backoff.NewExponentialBackOff()
	boff.MaxElapsedTime = time.Minute

	return boff
}

type sgsPoint struct {
	Data  string `json:"data"`
	Valor string `json:"valor"`
}

// Fetch implements Source.
func (c *SGSClient) Fetch(ctx context.Context, code int, start, end civil.Date) ([]Observation, error) {
	endpoint := fmt.Sprintf("%s/dados/serie/bcdata.sgs.%d/dados", strings.TrimRight(c.BaseURL, "/"), code)
	q := url.Values{}
	q.Set("formato", "json")
	q.Set("dataInicial", start.In(time.UTC).Format(sgsDateLayout))
	q.Set("dataFinal", end.In(time.UTC).Format(sgsDateLayout))
	reqURL := endpoint + "?" + q.Encode()

	var points []sgsPoint
	op := func() error {
		var err error
		points, err = c.get(ctx, reqURL)
		return err
	}

	boff := c.NewBackOff
	if boff == nil {
		boff = DefaultBackOff
	}
	if err := backoff.Retry(op, backoff.WithContext(boff(), ctx)); err != nil {
		return nil, fmt.Errorf("SGSClient.Fetch: series %d: %w", code, err)
	}

	return parsePoints(points)
}

// get performs one request. Client errors other than 429 are permanent.
func (c *SGSClient) get(ctx context.Context, reqURL string) ([]sgsPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	var points []sgsPoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return points, nil
}

// StatusError is returned for non-200 provider responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err carries the given provider status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func parsePoints(points []sgsPoint) ([]Observation, error) {
	out := make([]Observation, 0, len(points))
	for _, p := range points {
		t, err := time.Parse(sgsDateLayout, p.Data)
		if err != nil {
			return nil, fmt.Errorf("parsePoints: date %q: %w", p.Data, err)
		}
		o := Observation{Date: civil.DateOf(t)}
		if v := strings.TrimSpace(p.Valor); v != "" {
			o.Value, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("parsePoints: value %q on %s: %w", p.Valor, p.Data, err)
			}
			o.Valid = true
		}
		out = append(out, o)
	}
	return out, nil
}
