package common

import (
	"clubbot/internal/metrics"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	OK                     int = 200
	BAD_REQUEST            int = 400
	UNAUTHORIZED           int = 401
	FORBIDDEN              int = 403
	DATA_NOT_FOUND         int = 404
	METHOD_NOT_ALLOWED     int = 405
	UNSUPPORTED_MEDIA_TYPE int = 415
	RATE_LIMIT_EXCEEDED    int = 429
	INTERNAL_SERVER_ERROR  int = 500
	BAD_GATEWAY            int = 502
	SERVICE_UNAVAILABLE    int = 503
	GATEWAY_TIMEOUT        int = 504
)

var messages = map[int]string{
	OK:                     "OK",
	BAD_REQUEST:            "Bad request",
	UNAUTHORIZED:           "Unauthorized",
	FORBIDDEN:              "Forbidden",
	DATA_NOT_FOUND:         "Data not found",
	METHOD_NOT_ALLOWED:     "Method not allowed",
	UNSUPPORTED_MEDIA_TYPE: "Unsupported media type",
	RATE_LIMIT_EXCEEDED:    "Rate limit exceeded",
	INTERNAL_SERVER_ERROR:  "Internal server error",
	BAD_GATEWAY:            "Bad gateway",
	SERVICE_UNAVAILABLE:    "Service unavailable",
	GATEWAY_TIMEOUT:        "Gateway timeout",
}

var errRateLimited = errors.New("rate limiter is not allowing the request")

type Proxy struct {
	header      map[string]string
	client      *http.Client
	rateLimiter *RateLimiter
	logger      zerolog.Logger
}

func NewProxy(header map[string]string, client *http.Client, rateLimiter *RateLimiter, logger zerolog.Logger) *Proxy {
	if client == nil {
		client = http.DefaultClient
	}
	return &Proxy{header, client, rateLimiter, logger}
}

// Make a GET request to the provided url, indicating if it is vital.
// The request will be performed depending on the status of the rate limiter.
// Every failure is reported as an *UpstreamAPIError
func (proxy *Proxy) Request(ctx context.Context, component string, url string, vital bool) (data []byte, err error) {

	defer metrics.ObserveUpstreamRequest(component, time.Now(), &err)

	// ask for permission to execute the request
	// and wait if necessary
	if !proxy.rateLimiter.Allowed(ctx, vital) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &UpstreamAPIError{URL: url, Err: ctxErr}
		}
		return nil, &UpstreamAPIError{URL: url, Err: errRateLimited}
	}

	// Create the request and add the header
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamAPIError{URL: url, Err: fmt.Errorf("could not create request: %w", err)}
	}
	for key, value := range proxy.header {
		request.Header.Set(key, value)
	}
	request.Header.Set("Accept", "application/json")

	// Perform the request
	proxy.logger.Debug().Str("url", url).Msg("Requesting")
	res, err := proxy.client.Do(request)
	if err != nil {
		return nil, &UpstreamAPIError{URL: url, Err: fmt.Errorf("could not perform request: %w", err)}
	}
	defer res.Body.Close()

	// Check if the status of the request is understood
	message, ok := messages[res.StatusCode]
	if !ok {
		message = "Status code not understood"
	}
	proxy.logger.Debug().Int("status", res.StatusCode).Str("url", url).Msg(message)

	switch res.StatusCode {
	case OK:
		// Read the response
		stream, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, &UpstreamAPIError{URL: url, StatusCode: res.StatusCode, Err: fmt.Errorf("could not read response: %w", err)}
		}
		return stream, nil
	case RATE_LIMIT_EXCEEDED:
		proxy.rateLimiter.ReceivedRateLimit()
		return nil, &UpstreamAPIError{URL: url, StatusCode: res.StatusCode, Err: errors.New(message)}
	default:
		return nil, &UpstreamAPIError{URL: url, StatusCode: res.StatusCode, Err: errors.New(message)}
	}
}
