package fetchutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	neturl "net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// StatusError reports a non-2xx response from the source site.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.URL)
}

var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Retryable reports whether the failure is transient. Anything else
// (4xx other than 408/429, parse errors) should propagate immediately.
func Retryable(status int) bool {
	return retryableStatus[status]
}

type Options struct {
	Timeout   time.Duration
	Retries   int
	BaseDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		Timeout:   time.Second * 10,
		Retries:   3,
		BaseDelay: time.Second * 2,
	}
}

// NewClient builds a resty client that retries transient failures with
// exponential backoff: the delay before retry k is BaseDelay * 2^(k-1).
// Network-level errors (timeouts included) always count as transient.
func NewClient(opts Options) *resty.Client {
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetRetryCount(opts.Retries)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return Retryable(res.StatusCode())
	})
	client.SetRetryAfter(func(_ *resty.Client, res *resty.Response) (time.Duration, error) {
		attempt := res.Request.Attempt
		if attempt < 1 {
			attempt = 1
		}
		delay := opts.BaseDelay << (attempt - 1)
		slog.WarnContext(
			res.Request.Context(), "retrying request",
			"url", res.Request.URL,
			"attempt", attempt,
			"retries", opts.Retries,
			"delay", delay,
		)
		return delay, nil
	})
	return client
}

// FetchHTML performs a GET and returns the response body, converting
// non-2xx responses into a StatusError and timeouts into the 408
// equivalent.
func FetchHTML(ctx context.Context, client *resty.Client, link string) (string, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		var uerr *neturl.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return "", &StatusError{Status: http.StatusRequestTimeout, URL: link}
		}
		return "", err
	}
	if res.IsError() {
		return "", &StatusError{Status: res.StatusCode(), URL: link}
	}
	return res.String(), nil
}
