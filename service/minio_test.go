package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
)

func TestNewMinioService(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "invalid-endpoint:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "test",
		UseSSL:    false,
	}

	svc, err := NewMinioService(cfg)
	// The client connects lazily, so construction normally succeeds.
	if err != nil {
		t.Logf("NewMinioService returned error: %v", err)
	} else if svc == nil {
		t.Error("Expected non-nil service")
	}
}

func TestMinioServicePublicURL(t *testing.T) {
	tests := []struct {
		name       string
		useSSL     bool
		endpoint   string
		publicURL  string
		bucket     string
		objectName string
		expected   string
	}{
		{
			name:       "http url",
			useSSL:     false,
			endpoint:   "localhost:9000",
			bucket:     "test-bucket",
			objectName: "certificates/u1/r1/EIC-1.pdf",
			expected:   "http://localhost:9000/test-bucket/certificates/u1/r1/EIC-1.pdf",
		},
		{
			name:       "https url",
			useSSL:     true,
			endpoint:   "minio.example.com",
			bucket:     "certificates",
			objectName: "photos/r1/obs.jpg",
			expected:   "https://minio.example.com/certificates/photos/r1/obs.jpg",
		},
		{
			name:       "public url override",
			useSSL:     false,
			endpoint:   "minio:9000",
			publicURL:  "https://files.example.com/",
			bucket:     "certs",
			objectName: "a.pdf",
			expected:   "https://files.example.com/certs/a.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MinioService{
				bucket: tt.bucket,
				config: &config.MinioConfig{
					Endpoint:  tt.endpoint,
					UseSSL:    tt.useSSL,
					PublicURL: tt.publicURL,
				},
			}

			result := svc.PublicURL(tt.objectName)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestPublicReadPolicy(t *testing.T) {
	raw, err := publicReadPolicy("certs")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var policy bucketPolicy
	if err := json.Unmarshal([]byte(raw), &policy); err != nil {
		t.Fatalf("Failed to parse policy: %v", err)
	}
	if len(policy.Statement) != 1 {
		t.Fatalf("Expected one statement, got %d", len(policy.Statement))
	}
	st := policy.Statement[0]
	if st.Effect != "Allow" || len(st.Action) != 1 || st.Action[0] != "s3:GetObject" {
		t.Errorf("Unexpected statement %+v", st)
	}
	if len(st.Resource) != 1 || st.Resource[0] != "arn:aws:s3:::certs/*" {
		t.Errorf("Expected object resource, got %v", st.Resource)
	}
	if strings.Contains(raw, "s3:ListBucket") {
		t.Error("Listing must stay private")
	}
}

// fakeS3 answers the bucket calls EnsureBucket makes.
type fakeS3 struct {
	mu        sync.Mutex
	exists    bool
	policy    string
	created   bool
	setPolicy string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	query := r.URL.Query()
	switch {
	case query.Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
	case query.Has("policy") && r.Method == http.MethodGet:
		if f.policy == "" {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchBucketPolicy</Code><Message>The bucket policy does not exist</Message></Error>`)
			return
		}
		io.WriteString(w, f.policy)
	case query.Has("policy") && r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.setPolicy = string(body)
		f.policy = string(body)
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodHead:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut:
		f.created = true
		f.exists = true
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func TestMinioServiceEnsureBucket(t *testing.T) {
	tests := []struct {
		name          string
		exists        bool
		policy        string
		expectCreated bool
		expectPolicy  bool
	}{
		{"creates bucket with public read", false, "", true, true},
		{"existing private bucket gets public read", true, "", false, true},
		{"existing policy is kept", true, `{"Version":"2012-10-17","Statement":[]}`, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeS3{exists: tt.exists, policy: tt.policy}
			server := httptest.NewServer(fake)
			defer server.Close()

			endpoint, _ := url.Parse(server.URL)
			svc, err := NewMinioService(&config.MinioConfig{
				Endpoint:  endpoint.Host,
				AccessKey: "test",
				SecretKey: "test",
				Bucket:    "certs",
			})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if err := svc.EnsureBucket(context.Background()); err != nil {
				t.Fatalf("EnsureBucket: %v", err)
			}
			if fake.created != tt.expectCreated {
				t.Errorf("Expected created=%v, got %v", tt.expectCreated, fake.created)
			}
			if (fake.setPolicy != "") != tt.expectPolicy {
				t.Errorf("Expected policy set=%v, got %q", tt.expectPolicy, fake.setPolicy)
			}
			if tt.expectPolicy && !strings.Contains(fake.setPolicy, "arn:aws:s3:::certs/*") {
				t.Errorf("Unexpected policy %s", fake.setPolicy)
			}
		})
	}
}

func TestMinioServiceWithContext(t *testing.T) {
	cfg := &config.MinioConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "test",
	}

	svc, err := NewMinioService(cfg)
	if err != nil {
		t.Skip("Could not create MinIO service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Upload(ctx, "test", strings.NewReader("test"), 4, "text/plain"); err == nil {
		t.Error("Expected upload with cancelled context to fail")
	}
}

func TestGCSServicePublicURL(t *testing.T) {
	svc := &GCSService{bucket: "eic-certs"}
	expected := "https://storage.googleapis.com/eic-certs/certificates/u/r/1.pdf"
	if got := svc.PublicURL("certificates/u/r/1.pdf"); got != expected {
		t.Errorf("Expected '%s', got '%s'", expected, got)
	}
}
