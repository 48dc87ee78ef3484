package ats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
)

// fetcher is the shared HTTP plumbing embedded by every parser: JSON fetch
// with retry, and transient/permanent classification of the outcome.
type fetcher struct {
	client *http.Client
	retry  *RetryPolicy
	logger arbor.ILogger
}

func newFetcher(client *http.Client, logger arbor.ILogger) fetcher {
	return fetcher{
		client: client,
		retry:  NewRetryPolicy(),
		logger: logger,
	}
}

// SetRetry overrides the retry attempt count and minimum gap from config.
// Zero values keep the defaults.
func (f *fetcher) SetRetry(attempts int, gap time.Duration) {
	if attempts > 0 {
		f.retry.MaxAttempts = attempts
	}
	if gap > 0 {
		f.retry.InitialBackoff = gap
	}
}

// fetchJSON performs an HTTP request with retry and decodes the response into
// target. Exhausted retries surface as TransientError; 4xx and decode
// failures as PermanentError.
func (f *fetcher) fetchJSON(ctx context.Context, method, url string, body []byte, target interface{}) error {
	var lastBody []byte

	status, err := f.retry.ExecuteWithRetry(ctx, f.logger, func() (int, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, url, reader)
		if reqErr != nil {
			return 0, reqErr
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, doErr := f.client.Do(req)
		if doErr != nil {
			return 0, doErr
		}
		defer resp.Body.Close()

		data, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return resp.StatusCode, readErr
		}
		lastBody = data
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp.StatusCode, nil
	})

	if err != nil {
		op := fmt.Sprintf("%s %s", method, url)
		if status >= 400 && status < 500 && status != 408 && status != 429 {
			return &PermanentError{Op: op, Err: err}
		}
		return &TransientError{Op: op, Err: err}
	}

	if err := json.Unmarshal(lastBody, target); err != nil {
		return &PermanentError{Op: fmt.Sprintf("decode %s", url), Err: err}
	}
	return nil
}
