package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantEUR float64
	}{
		{
			name:    "ok",
			status:  http.StatusOK,
			body:    `{"base":"USD","rates":{"USD":1,"EUR":0.92}}`,
			wantEUR: 0.92,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			body:    `{"rates":{"EUR":0.92}}`,
			wantErr: true,
		},
		{
			name:    "missing rates",
			status:  http.StatusOK,
			body:    `{"base":"USD"}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			rates, err := NewHTTPFetcher(srv.URL, time.Second).Fetch(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got rates %v", rates)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if rates["EUR"] != tt.wantEUR {
				t.Errorf("EUR = %v, want %v", rates["EUR"], tt.wantEUR)
			}
		})
	}
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPFetcher(srv.URL, 50*time.Millisecond).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher("", 0)
	if f.URL != DefaultURL || f.Timeout != DefaultFetchTimeout {
		t.Errorf("defaults not applied: %+v", f)
	}
}
