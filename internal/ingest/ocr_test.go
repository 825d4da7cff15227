package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestServiceClient_Recognize(t *testing.T) {
	var gotPath string
	var gotImage string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req ocrRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		gotImage = req.Image

		_ = json.NewEncoder(w).Encode(ocrResponse{Lines: []string{"line one", "line two"}})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)
	lines, err := client.Recognize(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/ocr" {
		t.Errorf("Expected /ocr path, got %s", gotPath)
	}
	if gotImage != base64.StdEncoding.EncodeToString([]byte("image-bytes")) {
		t.Error("Expected base64-encoded image in request")
	}
	if len(lines) != 2 || lines[0] != "line one" {
		t.Errorf("Expected recognized lines, got %v", lines)
	}
}

func TestServiceClient_Orientation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orientation" {
			t.Errorf("Expected /orientation path, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(orientationResponse{Angle: 270})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)
	angle, err := client.Orientation(context.Background(), []byte("img"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if angle != 270 {
		t.Errorf("Expected angle 270, got %d", angle)
	}
}

func TestServiceClient_InvalidAngle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(orientationResponse{Angle: 45})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)
	_, err := client.Orientation(context.Background(), []byte("img"))
	if err == nil {
		t.Fatal("Expected error for invalid angle, got nil")
	}
	if !strings.Contains(err.Error(), "invalid angle 45") {
		t.Errorf("Expected invalid angle error, got %v", err)
	}
}

func TestServiceClient_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(serviceError{Error: "model not loaded"})
	}))
	defer server.Close()

	client := NewServiceClient(server.URL, 5*time.Second)
	_, err := client.Recognize(context.Background(), []byte("img"))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("Expected service error message surfaced, got %v", err)
	}
}
