package waxapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/lint"
)

func newTestClient(url string, auth config.AuthMode, key string) *Client {
	cfg := config.DefaultAPIConfig()
	cfg.Endpoint = url
	cfg.Auth = auth
	cfg.Timeout = 5
	return New(cfg, key)
}

func TestLint_HeaderModeRequest(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotType, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("body is not JSON: %v", err)
		}
		if strings.Contains(string(data), `\u003c`) {
			t.Errorf("body escapes HTML: %s", data)
		}
		w.Write([]byte(`[{"element":"<span wax-ln=\"3\">","message":"m","severity":"error","code":"x1"}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, config.AuthHeader, "secret-key")
	findings, err := c.Lint(context.Background(), `<div wax-ln="2">`)
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}

	if gotAuth != "secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotQuery != "" {
		t.Errorf("query = %q, want none", gotQuery)
	}
	if gotBody["element"] != `<div wax-ln="2">` || gotBody["isLinter"] != true {
		t.Errorf("body = %v", gotBody)
	}
	if rules, ok := gotBody["rules"].([]any); !ok || len(rules) != 0 {
		t.Errorf("rules = %#v, want empty list", gotBody["rules"])
	}

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.Element != `<span wax-ln="3">` || f.Message != "m" || f.Severity != "error" {
		t.Errorf("finding = %+v", f)
	}
	if string(f.Extra["code"]) != `"x1"` {
		t.Errorf("extra fields not kept: %v", f.Extra)
	}
}

func TestLint_QueryModeRequest(t *testing.T) {
	var gotBody map[string]any
	var gotKey, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL+"/lint/html", config.AuthQuery, "k&1")
	findings, err := c.Lint(context.Background(), "<p>")
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %v, want none", findings)
	}
	if gotKey != "k&1" {
		t.Errorf("apikey = %q", gotKey)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none", gotAuth)
	}
	if _, ok := gotBody["rules"]; ok {
		t.Errorf("rules sent in query mode: %v", gotBody)
	}
}

func TestLint_EmptyKeyPassedThrough(t *testing.T) {
	var sawHeader bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, config.AuthHeader, "")
	if _, err := c.Lint(context.Background(), "<p>"); err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if !sawHeader {
		t.Error("empty key should still be sent as an empty Authorization header")
	}
}

func TestLint_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    lint.RequestErrorKind
		status  int
	}{
		{
			name: "non-200",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad key", http.StatusUnauthorized)
			},
			kind:   lint.KindTransport,
			status: http.StatusUnauthorized,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>oops</html>`))
			},
			kind:   lint.KindMalformedResponse,
			status: http.StatusOK,
		},
		{
			name: "null body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("null"))
			},
			kind:   lint.KindMalformedResponse,
			status: http.StatusOK,
		},
		{
			name: "object instead of array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"nope"}`))
			},
			kind:   lint.KindMalformedResponse,
			status: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			findings, err := newTestClient(srv.URL, config.AuthHeader, "k").Lint(context.Background(), "<p>")
			if findings != nil {
				t.Errorf("findings = %v, want nil", findings)
			}
			var rerr *lint.RequestError
			if !errors.As(err, &rerr) {
				t.Fatalf("err = %v, want *lint.RequestError", err)
			}
			if rerr.Kind != tt.kind || rerr.StatusCode != tt.status {
				t.Errorf("kind/status = %v/%d, want %v/%d", rerr.Kind, rerr.StatusCode, tt.kind, tt.status)
			}
		})
	}
}

func TestLint_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, config.AuthHeader, "k").Lint(context.Background(), "<p>")
	var rerr *lint.RequestError
	if !errors.As(err, &rerr) || rerr.Kind != lint.KindTransport || rerr.StatusCode != 0 {
		t.Fatalf("err = %#v, want transport error without status", err)
	}
}

func TestScope_ChangesWithRules(t *testing.T) {
	a := newTestClient("https://x", config.AuthHeader, "k")
	b := newTestClient("https://x", config.AuthHeader, "other")
	if a.Scope() != b.Scope() {
		t.Error("scope should not depend on the key")
	}
	b.Rules = []string{"alt-text"}
	if a.Scope() == b.Scope() {
		t.Error("scope should depend on rules")
	}
}
