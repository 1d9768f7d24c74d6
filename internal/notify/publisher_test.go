package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lllllllleong/recordexport/internal/models"
)

func TestPublish(t *testing.T) {
	var (
		gotSubject string
		gotType    string
		gotSource  string
		gotData    models.NotificationData
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = r.Header.Get("Ce-Subject")
		gotType = r.Header.Get("Ce-Type")
		gotSource = r.Header.Get("Ce-Source")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotData); err != nil {
			t.Errorf("event body is not JSON: %v (%s)", err, body)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	p, err := NewPublisher(server.URL, "/record-exporter")
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}

	n := models.Notification{
		Subject: "Record export complete",
		Message: "Your export is ready.",
		Details: models.ExportDetails{
			FileName:    "export-2024-01-02T03-04-05-678Z.csv",
			DownloadURL: "https://example.test/file",
			Timestamp:   "2024-01-02T03:04:05.678Z",
			ExpiresAt:   "2024-01-02T03:09:05.678Z",
		},
	}
	if err := p.Publish(context.Background(), n); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if gotSubject != n.Subject {
		t.Errorf("ce-subject = %q, want %q", gotSubject, n.Subject)
	}
	if gotType != EventType {
		t.Errorf("ce-type = %q, want %q", gotType, EventType)
	}
	if gotSource != "/record-exporter" {
		t.Errorf("ce-source = %q, want %q", gotSource, "/record-exporter")
	}
	if gotData.Message != n.Message || gotData.Details != n.Details {
		t.Errorf("data = %+v, want message %q details %+v", gotData, n.Message, n.Details)
	}
}

func TestPublish_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p, err := NewPublisher(server.URL, "/record-exporter")
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}

	err = p.Publish(context.Background(), models.Notification{Subject: "s"})
	if !errors.Is(err, models.ErrNotification) {
		t.Fatalf("Publish() error = %v, want ErrNotification", err)
	}
}

func TestNewPublisher_NoTarget(t *testing.T) {
	if _, err := NewPublisher("", "/x"); err == nil {
		t.Fatal("NewPublisher(\"\") expected error")
	}
}
