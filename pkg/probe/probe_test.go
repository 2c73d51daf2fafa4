package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReachable(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		if r.URL.Path == "/robots.txt" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewWithClient(srv.Client())

	if !p.Reachable(context.Background(), srv.URL+"/robots.txt") {
		t.Error("expected robots.txt to be reachable")
	}
	if method != http.MethodHead {
		t.Errorf("probe used %s, want HEAD", method)
	}
	if p.Reachable(context.Background(), srv.URL+"/sitemap.xml") {
		t.Error("404 should not count as reachable")
	}
}

func TestReachable_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := New()
	if p.Reachable(context.Background(), url) {
		t.Error("closed server should not be reachable")
	}
}
