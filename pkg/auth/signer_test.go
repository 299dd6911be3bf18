package auth

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/liugddx/spark-go/pkg/api"
)

var vectorCred = Credential{
	Host:      "spark-api.xf-yun.com",
	Path:      "/v1.1/chat",
	Method:    "POST",
	APIKey:    "API_KEY",
	APISecret: "SECRET_KEY",
}

var vectorTime = time.Date(2023, time.May, 5, 10, 43, 39, 0, time.UTC)

// Expected values for vectorCred at vectorTime, derived from the signing
// base string
// "host: spark-api.xf-yun.com\ndate: Fri, 05 May 2023 10:43:39 GMT\nPOST /v1.1/chat HTTP/1.1".
const (
	vectorDate      = "Fri, 05 May 2023 10:43:39 GMT"
	vectorSignature = "PEnMeUimjfkII5undO1gVTJX4WcKcNIXmfGIK0Z46VI="
	vectorAuth      = "YXBpX2tleT0iQVBJX0tFWSIsIGFsZ29yaXRobT0iaG1hYy1zaGEyNTYiLCBoZWFkZXJzPSJob3N0IGRhdGUgcmVxdWVzdC1saW5lIiwgc2lnbmF0dXJlPSJQRW5NZVVpbWpma0lJNXVuZE8xZ1ZUSlg0V2NLY05JWG1mR0lLMFo0NlZJPSI="
)

func TestSignVector(t *testing.T) {
	signed, err := Sign(vectorCred, vectorTime)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	if signed.Date != vectorDate {
		t.Errorf("Date = %q, want %q", signed.Date, vectorDate)
	}
	if signed.Signature != vectorSignature {
		t.Errorf("Signature = %q, want %q", signed.Signature, vectorSignature)
	}
	if signed.Authorization != vectorAuth {
		t.Errorf("Authorization = %q, want %q", signed.Authorization, vectorAuth)
	}
	wantPrefix := "https://spark-api.xf-yun.com/v1.1/chat?authorization="
	if !strings.HasPrefix(signed.URL, wantPrefix) {
		t.Errorf("URL = %q, want prefix %q", signed.URL, wantPrefix)
	}
}

func TestSignDeterminism(t *testing.T) {
	a, err := Sign(vectorCred, vectorTime)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	b, err := Sign(vectorCred, vectorTime)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if a != b {
		t.Errorf("Sign is not deterministic:\n a: %+v\n b: %+v", a, b)
	}
}

func TestSignConvertsToUTC(t *testing.T) {
	cst := time.FixedZone("CST", 8*60*60)
	signed, err := Sign(vectorCred, vectorTime.In(cst))
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if signed.Date != vectorDate {
		t.Errorf("Date = %q, want %q (zone must not shift the timestamp)", signed.Date, vectorDate)
	}
}

func TestSignedURLRoundTrip(t *testing.T) {
	signed, err := Sign(vectorCred, vectorTime)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	u, err := url.Parse(signed.URL)
	if err != nil {
		t.Fatalf("URL does not parse: %v", err)
	}
	q := u.Query()
	if got := q.Get("date"); got != vectorDate {
		t.Errorf("query date = %q, want %q", got, vectorDate)
	}
	if got := q.Get("host"); got != vectorCred.Host {
		t.Errorf("query host = %q, want %q", got, vectorCred.Host)
	}
	if got := q.Get("authorization"); got != signed.Authorization {
		t.Errorf("query authorization does not round-trip")
	}
}

func TestSignMissingCredential(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Credential)
		wantParam string
	}{
		{"host", func(c *Credential) { c.Host = "" }, "host"},
		{"path", func(c *Credential) { c.Path = "" }, "path"},
		{"method", func(c *Credential) { c.Method = "" }, "method"},
		{"apiKey", func(c *Credential) { c.APIKey = "" }, "apiKey"},
		{"apiSecret", func(c *Credential) { c.APISecret = "" }, "apiSecret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := vectorCred
			tt.mutate(&cred)

			_, err := Sign(cred, vectorTime)
			if err == nil {
				t.Fatalf("Sign() succeeded with missing %s", tt.name)
			}
			var apiErr *api.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error is %T, want *api.Error", err)
			}
			if apiErr.Type != api.ErrorTypeConfiguration {
				t.Errorf("Type = %q, want %q", apiErr.Type, api.ErrorTypeConfiguration)
			}
			if apiErr.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", apiErr.Param, tt.wantParam)
			}
		})
	}
}

func TestWithPath(t *testing.T) {
	emb := vectorCred.WithPath("/v1/embeddings")
	if emb.Path != "/v1/embeddings" {
		t.Errorf("Path = %q, want /v1/embeddings", emb.Path)
	}
	if vectorCred.Path != "/v1.1/chat" {
		t.Errorf("WithPath mutated the receiver: %q", vectorCred.Path)
	}
	if emb.Host != vectorCred.Host || emb.APIKey != vectorCred.APIKey {
		t.Errorf("WithPath dropped shared fields: %+v", emb)
	}
}
