package graph

import (
	"context"
	"net/url"
	"testing"

	"github.com/intunedeck/intunedeck/internal/auth"
	"github.com/intunedeck/intunedeck/internal/config"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/httpclient"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingHTTPClient struct {
	last *httpclient.Request
	resp *httpclient.Response
	err  error
}

func (c *capturingHTTPClient) Send(_ context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return c.resp, nil
}

func newTestExecutor(t *testing.T, client httpclient.Client) Executor {
	t.Helper()
	cfg := config.GetDefaultConfig()
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	return NewExecutor(cfg, client, auth.NewStaticTokenProvider("test-token"), log)
}

func TestExecutorInjectsBearerToken(t *testing.T) {
	client := &capturingHTTPClient{resp: &httpclient.Response{StatusCode: 200, Body: []byte("{}")}}
	e := newTestExecutor(t, client)

	resp, err := e.Do(context.Background(), &Request{
		Method: "GET",
		Path:   "/deviceAppManagement/mobileApps",
		Query:  url.Values{"$top": []string{"50"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	require.NotNil(t, client.last)
	assert.Equal(t, "Bearer test-token", client.last.Headers["Authorization"])
	assert.Equal(t,
		"https://graph.microsoft.com/beta/deviceAppManagement/mobileApps?%24top=50",
		client.last.URL)
}

func TestExecutorKeepsAbsoluteNextLink(t *testing.T) {
	client := &capturingHTTPClient{resp: &httpclient.Response{StatusCode: 200, Body: []byte("{}")}}
	e := newTestExecutor(t, client)

	next := "https://graph.microsoft.com/beta/groups?$skiptoken=abc"
	_, err := e.Do(context.Background(), &Request{Method: "GET", Path: next})
	require.NoError(t, err)
	assert.Equal(t, next, client.last.URL)
}

func TestExecutorClassifiesThrottling(t *testing.T) {
	client := &capturingHTTPClient{
		err: httpclient.NewError(429, []byte("slow down"), map[string]string{"Retry-After": "7"}),
	}
	e := newTestExecutor(t, client)

	_, err := e.Do(context.Background(), &Request{Method: "POST", Path: "/x"})
	require.Error(t, err)
	assert.True(t, ierr.IsRateLimited(err))
	assert.Equal(t, 7, int(RetryAfterFromError(err).Seconds()))
}
