package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	t.Run("token present", func(t *testing.T) {
		c := New(srv.URL, func() string { return "tok-123" })
		require.NoError(t, c.Get(context.Background(), "/ping", nil))
		require.Equal(t, "Bearer tok-123", gotAuth)
	})

	t.Run("token empty", func(t *testing.T) {
		c := New(srv.URL, func() string { return "" })
		require.NoError(t, c.Get(context.Background(), "/ping", nil))
		require.Empty(t, gotAuth)
	})

	t.Run("nil token source", func(t *testing.T) {
		c := New(srv.URL, nil)
		require.NoError(t, c.Get(context.Background(), "/ping", nil))
		require.Empty(t, gotAuth)
	})
}

func TestClientDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"name":"glucometer","price":1200}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	var out struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	require.NoError(t, c.Post(context.Background(), "/equipment/add", map[string]string{"name": "glucometer"}, &out))
	require.Equal(t, "glucometer", out.Name)
	require.Equal(t, float64(1200), out.Price)
}

func TestClientErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "message field", status: 400, body: `{"message":"cart is empty"}`, wantMsg: "cart is empty"},
		{name: "error field fallback", status: 500, body: `{"error":"boom"}`, wantMsg: "boom"},
		{name: "message wins over error", status: 400, body: `{"message":"first","error":"second"}`, wantMsg: "first"},
		{name: "non-JSON body", status: 502, body: `bad gateway`, wantMsg: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body)) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL, nil)
			err := c.Get(context.Background(), "/x", nil)
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.wantMsg, apiErr.Message)
			require.Equal(t, tt.body, apiErr.Body)
			require.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestErrorAuthExpired(t *testing.T) {
	tests := []struct {
		name string
		err  Error
		want bool
	}{
		{name: "exact", err: Error{Status: 401, Message: "jwt expired"}, want: true},
		{name: "case insensitive", err: Error{Status: 401, Message: "JWT Expired"}, want: true},
		{name: "embedded", err: Error{Status: 401, Message: "auth failed: jwt expired, login again"}, want: true},
		{name: "wrong status", err: Error{Status: 403, Message: "jwt expired"}, want: false},
		{name: "other unauthorized", err: Error{Status: 401, Message: "invalid token"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.err.AuthExpired())
		})
	}
}

func TestClientObservers(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"jwt expired"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	var seen []*Error
	cancel := c.Subscribe(func(e *Error) { seen = append(seen, e) })

	require.Error(t, c.Get(context.Background(), "/x", nil))
	require.Len(t, seen, 1)
	require.Equal(t, 401, seen[0].Status)

	// Successful responses are not observed.
	fail = false
	require.NoError(t, c.Get(context.Background(), "/x", nil))
	require.Len(t, seen, 1)

	// After cancel the observer is gone. Cancel is idempotent.
	fail = true
	cancel()
	cancel()
	require.Error(t, c.Get(context.Background(), "/x", nil))
	require.Len(t, seen, 1)
}

func TestClientOversizedErrorBodyTruncated(t *testing.T) {
	big := make([]byte, 2<<20)
	for i := range big {
		big[i] = 'a'
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(big) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	err := c.Get(context.Background(), "/x", nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.Body, 1<<20)
}
