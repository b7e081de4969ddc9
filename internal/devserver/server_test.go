package devserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/mmcdole/atelier/internal/domain"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func register(t *testing.T, baseURL string) authResponse {
	t.Helper()
	resp := do(t, http.MethodPost, baseURL+"/api/auth/register", "", credentialsRequest{
		Email: "claude@museum.test", Username: "claude", Password: "monet1872",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}
	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return auth
}

func TestArtworks(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/api/artworks", "", nil)
	var artworks []domain.Artwork
	if err := json.NewDecoder(resp.Body).Decode(&artworks); err != nil {
		t.Fatalf("decode artworks: %v", err)
	}
	if len(artworks) != len(seedArtworks()) || artworks[0].Title != "La Joconde" {
		t.Fatalf("artworks = %d entries starting %q", len(artworks), artworks[0].Title)
	}

	if resp := do(t, http.MethodGet, ts.URL+"/api/artworks/2", "", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /artworks/2 status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/api/artworks/999", "", nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET /artworks/999 status = %d, want 404", resp.StatusCode)
	}
}

func TestRegisterLoginVerify(t *testing.T) {
	_, ts := newTestServer(t)
	auth := register(t, ts.URL)
	if auth.Token == "" || auth.User.Username != "claude" {
		t.Fatalf("register response = %+v", auth)
	}

	if resp := do(t, http.MethodPost, ts.URL+"/api/auth/register", "", credentialsRequest{
		Email: "CLAUDE@museum.test", Username: "other", Password: "secret12",
	}); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}

	if resp := do(t, http.MethodPost, ts.URL+"/api/auth/login", "", credentialsRequest{
		Email: "claude@museum.test", Password: "wrong-pass",
	}); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", resp.StatusCode)
	}

	resp := do(t, http.MethodPost, ts.URL+"/api/auth/login", "", credentialsRequest{
		Email: "claude@museum.test", Password: "monet1872",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/auth/verify", auth.Token, nil)
	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode verify: %v", err)
	}
	if user.ID != auth.User.ID {
		t.Fatalf("verify user = %+v, want %+v", user, auth.User)
	}
}

func TestFavoritesLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	token := register(t, ts.URL).Token
	favURL := ts.URL + "/api/favorites"

	if resp := do(t, http.MethodPost, favURL+"/3", token, nil); resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want 201", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, favURL+"/3", token, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second add status = %d, want 409", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, favURL+"/999", token, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("add unknown artwork status = %d, want 404", resp.StatusCode)
	}

	resp := do(t, http.MethodPut, favURL, token, replaceRequest{Favorites: []domain.FavoriteID{5, 1, 5}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace status = %d, want 200", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, favURL, token, nil)
	var ids domain.FavoriteSet
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if !reflect.DeepEqual(ids, domain.FavoriteSet{1, 5}) {
		t.Fatalf("favorites = %v, want [1 5]", ids)
	}

	resp = do(t, http.MethodPut, favURL, token, replaceRequest{Favorites: []domain.FavoriteID{2, 999}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("replace with unknown artwork status = %d, want 404", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, favURL, token, nil)
	ids = nil
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if !reflect.DeepEqual(ids, domain.FavoriteSet{1, 5}) {
		t.Fatalf("favorites after rejected replace = %v, want [1 5]", ids)
	}

	if resp := do(t, http.MethodDelete, favURL+"/1", token, nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}
	if resp := do(t, http.MethodDelete, favURL+"/1", token, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestFavoritesRequireToken(t *testing.T) {
	srv, ts := newTestServer(t)

	if resp := do(t, http.MethodGet, ts.URL+"/api/favorites", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", resp.StatusCode)
	}

	token := register(t, ts.URL).Token
	srv.RevokeToken(token)
	if resp := do(t, http.MethodGet, ts.URL+"/api/favorites", token, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d, want 401", resp.StatusCode)
	}
}

func TestFavoritesArePerUser(t *testing.T) {
	_, ts := newTestServer(t)
	alice := register(t, ts.URL).Token

	resp := do(t, http.MethodPost, ts.URL+"/api/auth/register", "", credentialsRequest{
		Email: "berthe@museum.test", Username: "berthe", Password: "morisot41",
	})
	var bob authResponse
	if err := json.NewDecoder(resp.Body).Decode(&bob); err != nil {
		t.Fatalf("decode register: %v", err)
	}

	do(t, http.MethodPost, ts.URL+"/api/favorites/4", alice, nil)

	resp = do(t, http.MethodGet, ts.URL+"/api/favorites", bob.Token, nil)
	var ids domain.FavoriteSet
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		t.Fatalf("decode favorites: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("second user sees favorites %v", ids)
	}
}
