package rest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/roster/pkg/adapters/rest"
	"github.com/aretw0/roster/pkg/domain"
	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://roster.test"

func newMockedClient(t *testing.T, opts ...rest.Option) *rest.Client {
	t.Helper()
	httpClient := &http.Client{}
	gock.InterceptClient(httpClient)
	t.Cleanup(func() {
		gock.Off()
		gock.RestoreClient(httpClient)
	})
	return rest.NewClient(baseURL, append([]rest.Option{rest.WithHTTPClient(httpClient)}, opts...)...)
}

func TestClient_List(t *testing.T) {
	client := newMockedClient(t)
	gock.New(baseURL).
		Get("/data").
		MatchHeader(rest.RequestIDHeader, ".+").
		Reply(200).
		JSON([]map[string]any{
			{"id": 1, "name": "Leanne Graham", "username": "Bret", "email": "Sincere@april.biz", "address": map[string]any{"city": "Gwenborough"}},
			{"id": 2, "name": "Ervin Howell", "email": "Shanna@melissa.tv"},
		})

	users, err := client.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Gwenborough", users[0].City())
	assert.Equal(t, "", users[1].City())
	assert.True(t, gock.IsDone())
}

func TestClient_List_RetriesNetworkErrors(t *testing.T) {
	client := newMockedClient(t)
	gock.New(baseURL).
		Get("/data").
		Times(4).
		ReplyError(errors.New("connection reset by peer"))

	_, err := client.List(context.Background())

	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, domain.OpList, reqErr.Op)
	assert.Equal(t, 0, reqErr.StatusCode)
	assert.True(t, gock.IsDone(), "one initial attempt and three retries")
}

func TestClient_List_RetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"Leanne","email":"l@example.com"}]`)
	}))
	defer server.Close()

	users, err := rest.NewClient(server.URL).List(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_List_StatusHandling(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"Retry 500", http.StatusInternalServerError, 4},
		{"Retry 429", http.StatusTooManyRequests, 4},
		{"Retry 408", http.StatusRequestTimeout, 4},
		{"No Retry 404", http.StatusNotFound, 1},
		{"No Retry 400", http.StatusBadRequest, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			_, err := rest.NewClient(server.URL).List(context.Background())

			var reqErr *domain.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_List_CustomRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := rest.NewClient(server.URL, rest.WithRetries(0)).List(context.Background())

	assert.ErrorIs(t, err, domain.ErrRequestFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_List_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rest.NewClient(server.URL).List(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
}

func TestClient_Create(t *testing.T) {
	t.Run("Server Id", func(t *testing.T) {
		client := newMockedClient(t)
		gock.New(baseURL).
			Post("/data").
			MatchType("json").
			JSON(map[string]string{"name": "Dana", "email": "dana@example.com"}).
			Reply(201).
			JSON(map[string]any{"id": 11, "name": "Dana", "email": "dana@example.com"})

		created, err := client.Create(context.Background(), domain.UserFormData{Name: "Dana", Email: "dana@example.com"})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, 11, created.ID)
		assert.True(t, gock.IsDone())
	})

	t.Run("Empty Response", func(t *testing.T) {
		client := newMockedClient(t)
		gock.New(baseURL).Post("/data").Reply(204)

		created, err := client.Create(context.Background(), domain.UserFormData{Name: "Dana", Email: "dana@example.com"})

		require.NoError(t, err)
		assert.Nil(t, created)
	})

	t.Run("Failure Is Not Retried", func(t *testing.T) {
		client := newMockedClient(t)
		gock.New(baseURL).Post("/data").Times(1).Reply(503).BodyString("unavailable")

		_, err := client.Create(context.Background(), domain.UserFormData{Name: "Dana", Email: "dana@example.com"})

		var reqErr *domain.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 503, reqErr.StatusCode)
		assert.Contains(t, err.Error(), "unavailable")
		assert.True(t, gock.IsDone())
	})
}

func TestClient_Update(t *testing.T) {
	client := newMockedClient(t)
	gock.New(baseURL).
		Patch("/data/2").
		JSON(map[string]string{"name": "Ervin", "email": "ervin@example.com"}).
		Reply(200).
		JSON(map[string]any{"id": 2})
	gock.New(baseURL).Patch("/data/9").Reply(404)

	err := client.Update(context.Background(), 2, domain.UserFormData{Name: "Ervin", Email: "ervin@example.com"})
	require.NoError(t, err)

	err = client.Update(context.Background(), 9, domain.UserFormData{Name: "X", Email: "x@example.com"})
	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 9, reqErr.UserID)
	assert.Equal(t, 404, reqErr.StatusCode)
}

func TestClient_Delete(t *testing.T) {
	client := newMockedClient(t, rest.WithPath("users/"))
	gock.New(baseURL).Delete("/users/3").Reply(200)
	gock.New(baseURL).Delete("/users/4").ReplyError(errors.New("connection refused"))

	require.NoError(t, client.Delete(context.Background(), 3))

	err := client.Delete(context.Background(), 4)
	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, domain.OpDelete, reqErr.Op)
	assert.True(t, gock.IsDone())
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name  string
		order func(hc *http.Client) []rest.Option
	}{
		{"Client First", func(hc *http.Client) []rest.Option {
			return []rest.Option{rest.WithHTTPClient(hc), rest.WithTimeout(50 * time.Millisecond)}
		}},
		{"Timeout First", func(hc *http.Client) []rest.Option {
			return []rest.Option{rest.WithTimeout(50 * time.Millisecond), rest.WithHTTPClient(hc)}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := &http.Client{}
			client := rest.NewClient(srv.URL, append(tt.order(hc), rest.WithRetries(0))...)

			start := time.Now()
			_, err := client.List(context.Background())

			assert.ErrorIs(t, err, domain.ErrRequestFailed)
			assert.Less(t, time.Since(start), time.Second)
			assert.Zero(t, hc.Timeout, "the caller's client is left untouched")
		})
	}
}
