package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/liugddx/spark-go/pkg/api"
)

// Credential identifies one provider endpoint and the key pair allowed to
// call it. It is immutable after construction. The secret must never be
// logged; SignedRequest carries no trace of it beyond the HMAC digest.
type Credential struct {
	Host      string
	Path      string
	Method    string
	APIKey    string
	APISecret string
}

// Validate reports the first missing field as a configuration error.
func (c Credential) Validate() error {
	switch {
	case c.Host == "":
		return api.NewConfigurationError("host", "is required")
	case c.Path == "":
		return api.NewConfigurationError("path", "is required")
	case c.Method == "":
		return api.NewConfigurationError("method", "is required")
	case c.APIKey == "":
		return api.NewConfigurationError("apiKey", "is required")
	case c.APISecret == "":
		return api.NewConfigurationError("apiSecret", "is required")
	}
	return nil
}

// WithPath returns a copy of the credential pointing at a different
// request path on the same host. Chat and embedding endpoints share one
// key pair but differ in path.
func (c Credential) WithPath(path string) Credential {
	c.Path = path
	return c
}

// SignedRequest is the authenticated form of a single request: the date
// the signature binds, the Base64 HMAC digest, the Base64 authorization
// value, and the fully assembled request URL.
type SignedRequest struct {
	Date          string
	Signature     string
	Authorization string
	URL           string
}

// dateLayout renders RFC 1123 with a literal GMT zone and English
// weekday/month abbreviations, the exact form the provider's signature
// check reproduces.
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Sign derives the authenticated URL for cred at the given instant.
//
// The signing base string is
//
//	host: <host>\ndate: <date>\n<METHOD> <path> HTTP/1.1
//
// with no trailing newline. Its HMAC-SHA256 digest under the API secret
// is Base64-encoded into the signature, which is wrapped into the
// authorization value and attached, together with date and host, as
// percent-encoded query parameters.
func Sign(cred Credential, now time.Time) (SignedRequest, error) {
	if err := cred.Validate(); err != nil {
		return SignedRequest{}, err
	}

	date := now.UTC().Format(dateLayout)

	base := "host: " + cred.Host + "\n" +
		"date: " + date + "\n" +
		cred.Method + " " + cred.Path + " HTTP/1.1"

	mac := hmac.New(sha256.New, []byte(cred.APISecret))
	mac.Write([]byte(base))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	origin := fmt.Sprintf(`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		cred.APIKey, signature)
	authorization := base64.StdEncoding.EncodeToString([]byte(origin))

	// Values.Encode sorts keys, which already yields the documented
	// authorization, date, host parameter order.
	q := url.Values{}
	q.Set("authorization", authorization)
	q.Set("date", date)
	q.Set("host", cred.Host)

	return SignedRequest{
		Date:          date,
		Signature:     signature,
		Authorization: authorization,
		URL:           "https://" + cred.Host + cred.Path + "?" + q.Encode(),
	}, nil
}
