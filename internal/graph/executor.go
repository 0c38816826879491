package graph

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/intunedeck/intunedeck/internal/auth"
	"github.com/intunedeck/intunedeck/internal/config"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/httpclient"
	"github.com/intunedeck/intunedeck/internal/logger"
	jsoniter "github.com/json-iterator/go"
)

// Request is one call against the Graph-like API. Path is relative to the
// configured base URL unless it is already absolute (pagination nextLinks
// come back absolute).
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is the decoded-enough result of a Graph call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Executor executes raw requests against the remote API. The concrete
// implementation owns authentication and error classification; it never
// retries — retry policy belongs to the caller.
type Executor interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

type httpExecutor struct {
	client  httpclient.Client
	tokens  auth.TokenProvider
	baseURL string
	timeout time.Duration
	logger  *logger.Logger
}

// NewExecutor creates the production executor over the shared HTTP client.
func NewExecutor(cfg *config.Configuration, client httpclient.Client, tokens auth.TokenProvider, log *logger.Logger) Executor {
	return &httpExecutor{
		client:  client,
		tokens:  tokens,
		baseURL: strings.TrimRight(cfg.Graph.BaseURL, "/"),
		timeout: cfg.Graph.Timeout,
		logger:  log,
	}
}

func (e *httpExecutor) Do(ctx context.Context, req *Request) (*Response, error) {
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	target := req.Path
	if !strings.HasPrefix(target, "http") {
		target = e.baseURL + req.Path
	}
	if len(req.Query) > 0 {
		target = target + "?" + req.Query.Encode()
	}

	var body []byte
	if req.Body != nil {
		body, err = jsoniter.Marshal(req.Body)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to encode the request payload").
				Mark(ierr.ErrSystem)
		}
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.Send(callCtx, &httpclient.Request{
		Method: req.Method,
		URL:    target,
		Headers: map[string]string{
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
		},
		Body: body,
	})
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// classifyError maps transport and HTTP failures onto the error taxonomy the
// orchestrator retries on: 429 and 5xx are transient, 401/403 permanent
// permission failures, 404 not found, 400 a validation problem.
func classifyError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if ctx.Err() == context.Canceled {
			return ierr.WithError(err).
				WithHint("The operation was cancelled").
				Mark(ierr.ErrCancelled)
		}
		return ierr.WithError(err).
			WithHint("The remote call timed out").
			Mark(ierr.ErrTimeout)
	}

	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		// Transport-level failures (connection reset, DNS) with no HTTP
		// status are treated as timeouts: retry may succeed.
		return ierr.WithError(err).
			WithHint("The remote service could not be reached").
			Mark(ierr.ErrTimeout)
	}

	switch httpErr.StatusCode {
	case http.StatusTooManyRequests:
		return ierr.WithError(err).
			WithHint("The remote service is throttling requests").
			WithReportableDetails(map[string]any{
				"retry_after": RetryAfter(httpErr).String(),
			}).
			Mark(ierr.ErrRateLimited)
	case http.StatusUnauthorized, http.StatusForbidden:
		return ierr.WithError(err).
			WithHint("The signed-in application lacks permission for this operation").
			Mark(ierr.ErrPermissionDenied)
	case http.StatusNotFound:
		return ierr.WithError(err).
			WithHint("The remote resource does not exist").
			Mark(ierr.ErrNotFound)
	case http.StatusBadRequest:
		return ierr.WithError(err).
			WithHint("The remote service rejected the request payload").
			Mark(ierr.ErrValidation)
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return ierr.WithError(err).
			WithHint("The remote service is temporarily unavailable").
			Mark(ierr.ErrUnavailable)
	default:
		return ierr.WithError(err).
			WithHint("The remote call failed").
			Mark(ierr.ErrHTTPClient)
	}
}

// RetryAfter extracts the server-suggested delay from a throttled response,
// zero if absent.
func RetryAfter(err *httpclient.Error) time.Duration {
	if err == nil {
		return 0
	}
	header := err.Headers["Retry-After"]
	if header == "" {
		return 0
	}
	if seconds, parseErr := strconv.Atoi(header); parseErr == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// RetryAfterFromError walks an error chain looking for a throttled HTTP
// response and returns its suggested delay.
func RetryAfterFromError(err error) time.Duration {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		return 0
	}
	return RetryAfter(httpErr)
}
