package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientCallDecodesSuccessResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req executeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Tool != "jobs_get" {
			t.Errorf("expected tool jobs_get, got %s", req.Tool)
		}
		json.NewEncoder(w).Encode(envelope{
			Success: true,
			Result:  json.RawMessage(`{"job":{"id":"abc","status":"RUNNING"}}`),
		})
	}))
	defer srv.Close()

	c := newClient(srv.URL, 2*time.Second)
	var result struct {
		Job struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"job"`
	}
	if err := c.call("jobs_get", map[string]interface{}{"job_id": "abc"}, &result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Job.ID != "abc" || result.Job.Status != "RUNNING" {
		t.Errorf("unexpected decoded job: %+v", result.Job)
	}
}

func TestClientCallReturnsErrorOnFailureEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := "not found: job \"abc\""
		json.NewEncoder(w).Encode(envelope{Success: false, Error: &msg})
	}))
	defer srv.Close()

	c := newClient(srv.URL, 2*time.Second)
	err := c.call("jobs_get", map[string]interface{}{"job_id": "abc"}, nil)
	if err == nil {
		t.Fatal("expected an error for a failure envelope")
	}
}
