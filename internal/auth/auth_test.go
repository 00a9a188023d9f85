package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := SignJWT(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	uid, err := ParseUserID(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != 42 {
		t.Fatalf("uid = %d, want 42", uid)
	}
}

func TestJWTRejections(t *testing.T) {
	token, err := SignJWT(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := ParseUserID(token, "other-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: got %v, want ErrInvalidToken", err)
	}
	if _, err := ParseUserID("garbage", "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: got %v, want ErrInvalidToken", err)
	}

	expired, err := SignJWT(42, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign expired: %v", err)
	}
	if _, err := ParseUserID(expired, "secret"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token: got %v, want ErrInvalidToken", err)
	}
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogleClient("cid", "csecret", "http://localhost/cb")
	raw := g.AuthCodeURL("nonce-1")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "cid" || q.Get("state") != "nonce-1" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected consent url: %s", raw)
	}
}

func TestGoogleExchangeAndUserInfo(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("code") != "auth-code" || r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("unexpected token request: %v", r.PostForm)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at-123"})
	}))
	defer tokenSrv.Close()

	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_ = json.NewEncoder(w).Encode(GoogleUser{Email: "a@b.c", Name: "Alice", Picture: "http://p"})
	}))
	defer infoSrv.Close()

	g := NewGoogleClient("cid", "csecret", "http://localhost/cb")
	g.TokenURL = tokenSrv.URL
	g.UserInfoURL = infoSrv.URL

	at, err := g.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if at != "at-123" {
		t.Fatalf("access token = %q", at)
	}

	info, err := g.UserInfo(context.Background(), at)
	if err != nil {
		t.Fatalf("userinfo: %v", err)
	}
	if info.Email != "a@b.c" || info.Name != "Alice" {
		t.Fatalf("unexpected profile: %+v", info)
	}
}

func TestGoogleExchangeFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer srv.Close()

	g := NewGoogleClient("cid", "csecret", "http://localhost/cb")
	g.TokenURL = srv.URL
	if _, err := g.Exchange(context.Background(), "bad"); err == nil {
		t.Fatalf("expected error on rejected code")
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer empty.Close()
	g.TokenURL = empty.URL
	if _, err := g.Exchange(context.Background(), "ok"); err == nil {
		t.Fatalf("expected error on empty access token")
	}
}
