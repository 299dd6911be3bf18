// Package auth builds the signed request URLs the Spark API requires.
//
// Every request authenticates through query parameters: an RFC 1123 GMT
// date, the host, and a Base64 authorization value wrapping an
// HMAC-SHA256 signature over "host / date / request-line". The provider
// verifies the signature server-side and rejects requests whose date
// falls outside its acceptance window, so signing happens per call with
// the current clock, never once at client construction.
//
// [Sign] is a pure function of ([Credential], time.Time); given the same
// inputs it always yields the same [SignedRequest].
package auth
