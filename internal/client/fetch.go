package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Result describes a completed fetch.
type Result struct {
	URL        string
	Status     string
	StatusCode int
	Bytes      int64
}

// Fetch GETs rawURL with c and copies the response body to w. A non-2xx
// status is not an error; the caller inspects Result.StatusCode.
func Fetch(ctx context.Context, c *http.Client, rawURL string, w io.Writer) (Result, error) {
	res := Result{URL: rawURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return res, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return res, err
	}
	defer resp.Body.Close()

	res.Status = resp.Status
	res.StatusCode = resp.StatusCode

	res.Bytes, err = copyBuffered(w, resp.Body)
	if err != nil {
		return res, fmt.Errorf("read body of %s: %w", rawURL, err)
	}
	return res, nil
}
