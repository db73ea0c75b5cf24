package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type scriptedResponse struct {
	status  int
	headers map[string]string
}

// scriptedServer answers requests with the given responses in order, repeating the last one
func scriptedServer(t *testing.T, responses ...scriptedResponse) (*httptest.Server, *[]string) {
	t.Helper()
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(body))

		resp := responses[min(len(bodies), len(responses))-1]
		for k, v := range resp.headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.status)
	}))
	t.Cleanup(server.Close)
	return server, &bodies
}

func recordWaits(waits *[]time.Duration) Option {
	return WithWaitFunc(func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	})
}

func post(t *testing.T, client *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(`{"query":"q"}`))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRoundTrip_RetriesAfterRetryAfter(t *testing.T) {
	server, bodies := scriptedServer(t,
		scriptedResponse{status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": "2"}},
		scriptedResponse{status: http.StatusOK},
	)
	var waits []time.Duration
	client := &http.Client{Transport: WithRateLimiting(nil, recordWaits(&waits))}

	resp := post(t, client, server.URL)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []time.Duration{2 * time.Second}, waits)
	require.Equal(t, []string{`{"query":"q"}`, `{"query":"q"}`}, *bodies, "body should be replayed on retry")
}

func TestRoundTrip_RetriesAfterRateLimitReset(t *testing.T) {
	reset := time.Now().Add(5 * time.Second).Unix()
	server, bodies := scriptedServer(t,
		scriptedResponse{status: http.StatusForbidden, headers: map[string]string{
			"x-ratelimit-remaining": "0",
			"x-ratelimit-reset":     strconv.FormatInt(reset, 10),
		}},
		scriptedResponse{status: http.StatusOK},
	)
	var waits []time.Duration
	client := &http.Client{Transport: WithRateLimiting(nil, recordWaits(&waits))}

	resp := post(t, client, server.URL)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, *bodies, 2)
	require.Len(t, waits, 1)
	require.LessOrEqual(t, waits[0], 6*time.Second)
}

func TestRoundTrip_PermissionDeniedIsNotRetried(t *testing.T) {
	server, bodies := scriptedServer(t, scriptedResponse{status: http.StatusForbidden})
	var waits []time.Duration
	client := &http.Client{Transport: WithRateLimiting(nil, recordWaits(&waits))}

	resp := post(t, client, server.URL)

	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Len(t, *bodies, 1)
	require.Empty(t, waits)
}

func TestRoundTrip_StopsAfterMaxAttempts(t *testing.T) {
	server, bodies := scriptedServer(t,
		scriptedResponse{status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": "1"}},
	)
	var waits []time.Duration
	client := &http.Client{Transport: WithRateLimiting(nil, WithMaxAttempts(2), recordWaits(&waits))}

	resp := post(t, client, server.URL)

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Len(t, *bodies, 2)
	require.Len(t, waits, 1)
}

func TestRoundTrip_WaitLongerThanMaxIsNotAttempted(t *testing.T) {
	server, bodies := scriptedServer(t,
		scriptedResponse{status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": "3600"}},
	)
	var waits []time.Duration
	client := &http.Client{Transport: WithRateLimiting(nil, WithMaxWait(time.Minute), recordWaits(&waits))}

	resp := post(t, client, server.URL)

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Len(t, *bodies, 1)
	require.Empty(t, waits)
}

func TestRoundTrip_CancelledWhileWaiting(t *testing.T) {
	server, _ := scriptedServer(t,
		scriptedResponse{status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": "30"}},
	)
	client := &http.Client{Transport: WithRateLimiting(nil)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimitWait(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		status  int
		headers map[string]string
		want    time.Duration
		limited bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "retry-after seconds", status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": "7"}, want: 7 * time.Second, limited: true},
		{name: "retry-after date", status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": now.Add(time.Minute).Format(http.TimeFormat)}, want: time.Minute, limited: true},
		{name: "retry-after garbage", status: http.StatusTooManyRequests, headers: map[string]string{"retry-after": "soon"}},
		{name: "reset in the past", status: http.StatusForbidden, headers: map[string]string{"x-ratelimit-remaining": "0", "x-ratelimit-reset": strconv.FormatInt(now.Add(-time.Minute).Unix(), 10)}, want: 0, limited: true},
		{name: "remaining quota", status: http.StatusForbidden, headers: map[string]string{"x-ratelimit-remaining": "12"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			for k, v := range tt.headers {
				resp.Header.Set(k, v)
			}
			got, limited := rateLimitWait(resp, now)
			require.Equal(t, tt.limited, limited)
			require.Equal(t, tt.want, got)
		})
	}
}
