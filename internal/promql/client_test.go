package promql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func vectorBody(value string) string {
	return `{"status":"success","data":{"resultType":"vector","result":[` +
		`{"metric":{"pod":"web-0"},"value":[1726000000.123,"` + value + `"]}]}}`
}

func TestQuery(t *testing.T) {
	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, vectorBody("1234.5"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL,
		WithLogger(testLogger()),
		WithAuthHeader(func() string { return "Bearer tok" }),
	)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := c.Query(context.Background(), `sum(container_memory_working_set_bytes{pod="web-0"})`)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if gotQuery != `sum(container_memory_working_set_bytes{pod="web-0"})` {
		t.Errorf("server received query %q", gotQuery)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer tok")
	}
	if got := c.ExtractValue(resp); got != 1234.5 {
		t.Errorf("ExtractValue() = %v, want 1234.5", got)
	}
}

func TestQueryOmitsEmptyAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Error("Authorization header sent despite empty supplier")
		}
		io.WriteString(w, vectorBody("1"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithLogger(testLogger()), WithAuthHeader(func() string { return "" }))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Query(context.Background(), "up"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"http error", http.StatusInternalServerError, "boom", true},
		{"api error status", http.StatusOK, `{"status":"error","data":{}}`, true},
		{"malformed json", http.StatusOK, `{"status":`, true},
		{"success", http.StatusOK, vectorBody("0.5"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL, WithLogger(testLogger()))
			if err != nil {
				t.Fatal(err)
			}
			_, err = c.Query(context.Background(), "up")
			if (err != nil) != tt.wantErr {
				t.Errorf("Query() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("NewClient(\"\") expected an error")
	}
}

func TestExtractValueDegradesToZero(t *testing.T) {
	c, err := NewClient("http://prometheus:9090", WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		resp *QueryResponse
	}{
		{"nil response", nil},
		{"empty result", &QueryResponse{Status: "success"}},
		{"missing value pair", &QueryResponse{Data: QueryData{Result: []Sample{{}}}}},
		{
			"non-numeric value",
			&QueryResponse{Data: QueryData{Result: []Sample{{
				Value: []json.RawMessage{json.RawMessage(`1726000000`), json.RawMessage(`"NaNope"`)},
			}}}},
		},
		{
			"value not a string",
			&QueryResponse{Data: QueryData{Result: []Sample{{
				Value: []json.RawMessage{json.RawMessage(`1726000000`), json.RawMessage(`42`)},
			}}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ExtractValue(tt.resp); got != 0.0 {
				t.Errorf("ExtractValue() = %v, want 0.0", got)
			}
		})
	}
}
