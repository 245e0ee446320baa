package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/healthhub/shopctl/internal/api"
)

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// fakeBackend serves the login endpoint the way the store's backend does:
// a success envelope with the token and user fields flattened into data.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		if creds.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`)) //nolint:errcheck
			return
		}
		resp := map[string]any{
			"success": true,
			"data": map[string]any{
				"token": mintToken(t, "user-1"),
				"_id":   "user-1",
				"name":  "Asha",
				"email": creds.Email,
			},
		}
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginSuccessPersists(t *testing.T) {
	srv := fakeBackend(t)
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	c := api.New(srv.URL, s.Token)

	res := s.Login(context.Background(), c, "asha@example.com", "hunter2")
	require.True(t, res.Success)
	require.Empty(t, res.Message)
	require.True(t, s.LoggedIn())

	user, ok := s.User()
	require.True(t, ok)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "Asha", user.Name)

	// A fresh store over the same directory sees the same session.
	s2, err := Open(dir)
	require.NoError(t, err)
	require.Equal(t, s.Token(), s2.Token())
	user2, ok := s2.User()
	require.True(t, ok)
	require.Equal(t, user, user2)
}

func TestLoginFailure(t *testing.T) {
	srv := fakeBackend(t)

	t.Run("bad credentials", func(t *testing.T) {
		s, err := Open(t.TempDir())
		require.NoError(t, err)
		c := api.New(srv.URL, s.Token)

		res := s.Login(context.Background(), c, "asha@example.com", "wrong")
		require.False(t, res.Success)
		require.Equal(t, "Invalid email or password", res.Message)
		require.False(t, s.LoggedIn())
	})

	t.Run("unreachable backend", func(t *testing.T) {
		s, err := Open(t.TempDir())
		require.NoError(t, err)
		c := api.New("http://127.0.0.1:1", s.Token)

		res := s.Login(context.Background(), c, "asha@example.com", "hunter2")
		require.False(t, res.Success)
		require.Equal(t, "Failed to login", res.Message)
	})

	t.Run("success without token", func(t *testing.T) {
		empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true,"data":{}}`)) //nolint:errcheck
		}))
		defer empty.Close()

		s, err := Open(t.TempDir())
		require.NoError(t, err)
		c := api.New(empty.URL, s.Token)

		res := s.Login(context.Background(), c, "asha@example.com", "hunter2")
		require.False(t, res.Success)
		require.Equal(t, "Invalid credentials", res.Message)
	})
}

func TestLogout(t *testing.T) {
	srv := fakeBackend(t)
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	c := api.New(srv.URL, s.Token)
	require.True(t, s.Login(context.Background(), c, "asha@example.com", "hunter2").Success)

	hookCalls := 0
	s.OnLogout(func() { hookCalls++ })

	s.Logout()
	require.False(t, s.LoggedIn())
	_, ok := s.User()
	require.False(t, ok)
	_, err = os.Stat(filepath.Join(dir, "session.json"))
	require.True(t, os.IsNotExist(err))
	require.Equal(t, 1, hookCalls)

	// Logging out while logged out still clears and fires the hook.
	s.Logout()
	require.False(t, s.LoggedIn())
	require.Equal(t, 2, hookCalls)
}

func TestCorruptSessionFileStartsLoggedOut(t *testing.T) {
	dir := t.TempDir()

	t.Run("invalid JSON", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("not json"), 0600))
		s, err := Open(dir)
		require.NoError(t, err)
		require.False(t, s.LoggedIn())
	})

	t.Run("missing identity", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte(`{"token":"abc"}`), 0600))
		s, err := Open(dir)
		require.NoError(t, err)
		require.False(t, s.LoggedIn())
	})
}

func TestExpiryWatchLogsOut(t *testing.T) {
	loginSrv := fakeBackend(t)

	expired := false
	mux := http.NewServeMux()
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		if expired {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"jwt expired"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"cart":{"items":[]}}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	loginClient := api.New(loginSrv.URL, s.Token)
	require.True(t, s.Login(context.Background(), loginClient, "asha@example.com", "hunter2").Success)

	c := api.New(srv.URL, s.Token)
	s.Watch(c)
	defer s.Close()

	hookCalls := 0
	s.OnLogout(func() { hookCalls++ })

	// A healthy response leaves the session alone.
	require.NoError(t, c.Get(context.Background(), "/cart", nil))
	require.True(t, s.LoggedIn())

	// The expiry signal forces a logout and fires the redirect hook.
	expired = true
	require.Error(t, c.Get(context.Background(), "/cart", nil))
	require.False(t, s.LoggedIn())
	require.Equal(t, 1, hookCalls)
}

func TestExpiryWatchIgnoresOtherErrors(t *testing.T) {
	loginSrv := fakeBackend(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	loginClient := api.New(loginSrv.URL, s.Token)
	require.True(t, s.Login(context.Background(), loginClient, "asha@example.com", "hunter2").Success)

	c := api.New(srv.URL, s.Token)
	s.Watch(c)
	defer s.Close()

	// Unauthorized without the expiry signal is the caller's problem, not a
	// session event.
	require.Error(t, c.Get(context.Background(), "/cart", nil))
	require.True(t, s.LoggedIn())
}

func TestWatchSurvivesRelogin(t *testing.T) {
	loginSrv := fakeBackend(t)

	expired := false
	mux := http.NewServeMux()
	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		if expired {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"jwt expired"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"cart":{"items":[]}}`)) //nolint:errcheck
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	loginClient := api.New(loginSrv.URL, s.Token)
	c := api.New(srv.URL, s.Token)
	s.Watch(c)
	defer s.Close()

	// Watch registered before any credential exists; logging in arms it.
	require.True(t, s.Login(context.Background(), loginClient, "asha@example.com", "hunter2").Success)

	expired = true
	require.Error(t, c.Get(context.Background(), "/cart", nil))
	require.False(t, s.LoggedIn())

	// Logging in again re-arms the watch for the new credential.
	expired = false
	require.True(t, s.Login(context.Background(), loginClient, "asha@example.com", "hunter2").Success)
	expired = true
	require.Error(t, c.Get(context.Background(), "/cart", nil))
	require.False(t, s.LoggedIn())
}
