package smartflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without API token")
	}
}

func TestClickToCall(t *testing.T) {
	var gotAuth string
	var gotBody ClickToCallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/click_to_call" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ClickToCallResponse{Success: true, CallID: "C42"})
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, APIToken: "tok-1", DIDNumber: "08066556655"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := client.ClickToCall(context.Background(), ClickToCallRequest{
		AgentNumber:       "501",
		DestinationNumber: "919876500000",
	})
	if err != nil {
		t.Fatalf("click to call: %v", err)
	}
	if !resp.Success || resp.CallID != "C42" {
		t.Errorf("resp = %+v", resp)
	}
	if gotAuth != "tok-1" {
		t.Errorf("click-to-call must send the raw token, got %q", gotAuth)
	}
	if gotBody.CallerID != "08066556655" {
		t.Errorf("caller id must default to the DID number, got %q", gotBody.CallerID)
	}
	if gotBody.Async != 1 || gotBody.GetCallID != 1 {
		t.Errorf("async/get_call_id flags must be set: %+v", gotBody)
	}
}

func TestFetchUsersBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok-1" {
			t.Errorf("users endpoint must send Bearer token, got %q", auth)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"7","login_id":"asha@acme.in","agent":{"id":501,"name":"Asha","status":0,"follow_me_number":"+919876543210"},"user_role":{"name":"Agent"}}]}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, APIToken: "tok-1"})
	if err != nil {
		t.Fatal(err)
	}

	users, err := client.FetchUsers(context.Background())
	if err != nil {
		t.Fatalf("fetch users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	u := users[0]
	if u.ID != 7 || u.Agent.ID != 501 || u.Agent.Name != "Asha" {
		t.Errorf("user = %+v", u)
	}
}

func TestFetchCallRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/call/records" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"results":[{"call_id":"R1","direction":"inbound","client_number":"+919876500000","call_duration":"15","status":"answered"}]}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, APIToken: "tok-1"})
	if err != nil {
		t.Fatal(err)
	}

	records, err := client.FetchCallRecords(context.Background())
	if err != nil {
		t.Fatalf("fetch records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].CallDuration != 15 {
		t.Errorf("duration = %d", records[0].CallDuration)
	}
}

func TestNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"upstream unavailable"}`))
	}))
	defer srv.Close()

	client, err := New(Config{BaseURL: srv.URL, APIToken: "tok-1", Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.FetchCallRecords(context.Background()); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestHangupRequiresCallID(t *testing.T) {
	client, err := New(Config{BaseURL: "http://localhost:1", APIToken: "tok"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.HangupCall(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank call id")
	}
}
