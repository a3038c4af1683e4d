package storage

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		useSSL   bool
		want     string
	}{
		{"", true, ""},
		{"localhost:9000", false, "http://localhost:9000"},
		{"storage.example.com", true, "https://storage.example.com"},
		{"https://already.example.com", false, "https://already.example.com"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.endpoint, tt.useSSL); got != tt.want {
			t.Errorf("normalizeEndpoint(%q, %v) = %q, want %q", tt.endpoint, tt.useSSL, got, tt.want)
		}
	}
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		region     string
		bucket     string
		publicBase string
		key        string
		want       string
	}{
		{"custom endpoint", "http://localhost:9000", "us-east-1", "photos", "", "a/b.jpg", "http://localhost:9000/photos/a/b.jpg"},
		{"aws default", "", "sa-east-1", "photos", "", "a/b.jpg", "https://photos.s3.sa-east-1.amazonaws.com/a/b.jpg"},
		{"explicit base", "", "", "", "https://cdn.example.com/", "/a/b.jpg", "https://cdn.example.com/a/b.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := tt.publicBase
			if base == "" {
				base = defaultPublicBase(tt.endpoint, tt.region, tt.bucket)
			}
			s := &s3Storage{publicBase: base}
			if got := s.PublicURL(tt.key); got != tt.want {
				t.Errorf("PublicURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
