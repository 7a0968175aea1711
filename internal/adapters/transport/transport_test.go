package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/protanno/internal/adapters/transport"
	"go.trai.ch/protanno/internal/core/domain"
)

// MockRoundTripper is a helper to mock http.Client behavior.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) *http.Response
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req), nil
}

func newMockClient(handler func(req *http.Request) *http.Response) *http.Client {
	return &http.Client{
		Transport: &MockRoundTripper{RoundTripFunc: handler},
	}
}

func respond(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

var testPolicy = transport.Policy{MaxAttempts: 4, Unit: time.Second, Max: time.Minute}

func TestPolicy_Backoff(t *testing.T) {
	p := transport.Policy{Unit: time.Second, Max: 30 * time.Second}

	assert.Equal(t, 1*time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(2))
	assert.Equal(t, 3*time.Second, p.Backoff(3))
	assert.Equal(t, 5*time.Second, p.Backoff(4))
	assert.Equal(t, 11*time.Second, p.Backoff(5))
	assert.Equal(t, 23*time.Second, p.Backoff(6))
	assert.Equal(t, 30*time.Second, p.Backoff(7), "capped")
	assert.Equal(t, 30*time.Second, p.Backoff(20), "past the schedule")
}

func TestRetrier_RetriesOnPrimeSchedule(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := transport.NewRetrier(testPolicy)
		calls := 0
		start := time.Now()

		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 4 {
				return domain.Classify(domain.KindNetwork, errors.New("boom"))
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 4, r.Attempts())
		assert.Equal(t, 6*time.Second, time.Since(start))
		assert.Equal(t, 6*time.Second, r.Waited())
	})
}

func TestRetrier_Exhausted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := transport.NewRetrier(testPolicy)

		err := r.Do(context.Background(), func(context.Context) error {
			return domain.Classify(domain.KindRateLimit, errors.New("slow down"))
		})

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrRetriesExhausted.Error())
		assert.True(t, domain.IsKind(err, domain.KindRateLimit))
		assert.Equal(t, 4, r.Attempts())
	})
}

func TestRetrier_PermanentFailureStops(t *testing.T) {
	r := transport.NewRetrier(testPolicy)
	permanent := domain.Classify(domain.KindIdentifierResolution, errors.New("bad request"))

	err := r.Do(context.Background(), func(context.Context) error { return permanent })

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, r.Attempts())
}

func TestRetrier_ContextCancelledDuringBackoff(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		r := transport.NewRetrier(testPolicy)

		go func() {
			time.Sleep(500 * time.Millisecond)
			cancel()
		}()

		err := r.Do(ctx, func(context.Context) error {
			return domain.Classify(domain.KindNetwork, errors.New("down"))
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, r.Attempts())
	})
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code      int
		wantErr   bool
		retryable bool
		kind      domain.ErrorKind
	}{
		{code: http.StatusOK},
		{code: http.StatusTooManyRequests, wantErr: true, retryable: true, kind: domain.KindRateLimit},
		{code: http.StatusBadGateway, wantErr: true, retryable: true, kind: domain.KindNetwork},
		{code: http.StatusBadRequest, wantErr: true, kind: domain.KindIdentifierResolution},
		{code: http.StatusNotFound, wantErr: true, kind: domain.KindIdentifierResolution},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			err := transport.CheckStatus(respond(tt.code, ""))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
			assert.True(t, domain.IsKind(err, tt.kind))
		})
	}
}

func TestClient_HonorsRetryAfter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls atomic.Int32
		hc := newMockClient(func(*http.Request) *http.Response {
			if calls.Add(1) == 1 {
				resp := respond(http.StatusTooManyRequests, "")
				resp.Header.Set("Retry-After", "7")
				return resp
			}
			return respond(http.StatusOK, `{"ok":true}`)
		})
		c := transport.NewClient(hc, testPolicy)
		start := time.Now()

		var out struct {
			OK bool `json:"ok"`
		}
		require.NoError(t, c.GetJSON(context.Background(), "https://example.test/x", &out))

		assert.True(t, out.OK)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 7*time.Second, time.Since(start))
	})
}

func TestClient_PostJSON(t *testing.T) {
	hc := newMockClient(func(req *http.Request) *http.Response {
		body, _ := io.ReadAll(req.Body)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"md5":["A"]}`, string(body))
		return respond(http.StatusOK, `{"results":[]}`)
	})
	c := transport.NewClient(hc, testPolicy)

	var out map[string]any
	err := c.PostJSON(context.Background(), "https://example.test/matches", map[string][]string{"md5": {"A"}}, &out)

	require.NoError(t, err)
	assert.Contains(t, out, "results")
}

func TestClient_ParseFailure(t *testing.T) {
	hc := newMockClient(func(*http.Request) *http.Response { return respond(http.StatusOK, "not json") })
	c := transport.NewClient(hc, testPolicy)

	var out map[string]any
	err := c.GetJSON(context.Background(), "https://example.test/x", &out)

	assert.ErrorContains(t, err, domain.ErrSourceParseFailed.Error())
}

func TestChunks(t *testing.T) {
	items := make([]int, 250)
	for i := range items {
		items[i] = i
	}

	t.Run("partial failure keeps other chunks", func(t *testing.T) {
		var seen atomic.Int32
		failures, err := transport.Chunks(context.Background(), items, 100, 2, func(_ context.Context, part []int) error {
			seen.Add(int32(len(part)))
			if part[0] == 100 {
				return errors.New("chunk down")
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, int32(250), seen.Load())
		require.Len(t, failures, 1)
		assert.Len(t, failures[0].Items, 100)
		assert.Equal(t, 100, failures[0].Items[0])
	})

	t.Run("all chunks failing is an outage", func(t *testing.T) {
		failures, err := transport.Chunks(context.Background(), items, 100, 4, func(context.Context, []int) error {
			return errors.New("down")
		})

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrSourceOutage.Error())
		assert.Len(t, failures, 3)
	})

	t.Run("nothing to do", func(t *testing.T) {
		failures, err := transport.Chunks(context.Background(), nil, 100, 4, func(context.Context, []int) error {
			t.Fatal("must not be called")
			return nil
		})
		require.NoError(t, err)
		assert.Empty(t, failures)
	})
}
