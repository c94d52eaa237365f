package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"delivery-log-service/internal/platform/obs"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

// TwilioFetcher downloads voice-note media with the messaging account's
// basic-auth credentials. Transient failures are retried inside this
// collaborator; the conversation core itself never retries.
type TwilioFetcher struct {
	accountSID string
	authToken  string
	session    *http.Client
}

func NewTwilioFetcher(accountSID, authToken string) (*TwilioFetcher, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" {
		return nil, errors.New("media fetcher: account SID and auth token are required")
	}

	return &TwilioFetcher{
		accountSID: accountSID,
		authToken:  authToken,
		session:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Fetch returns the raw audio bytes behind a media URL.
func (f *TwilioFetcher) Fetch(ctx context.Context, url string) (_ []byte, err error) {
	defer obs.Time(ctx, "media.fetch")(&err)

	if strings.TrimSpace(url) == "" {
		return nil, errors.New("fetch media: url must not be empty")
	}

	resp, err := f.doWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch media: read body: %w", err)
	}

	return audio, nil
}

func (f *TwilioFetcher) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(f.accountSID, f.authToken)
	return req, nil
}

func (f *TwilioFetcher) do(req *http.Request) (*http.Response, error) {
	resp, err := f.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429/5xx responses)
// with exponential backoff while respecting context cancellation. Auth and
// client errors fail immediately.
func (f *TwilioFetcher) doWithRetry(ctx context.Context, url string) (*http.Response, error) {
	const maxAttempts = 3
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := f.newRequest(ctx, url)
		if err != nil {
			return nil, err
		}

		resp, err := f.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
