// Package gorules holds ruleguard lint rules for spark-go.
//
// Run with:
//
//	ruleguard -rules ruleguard/rules.go ./...
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func secrets(m dsl.Matcher) {
	// Credentials must never reach a log call, not even at TRACE.
	m.Match(`slog.$f($*_, "api_secret", $_, $*_)`,
		`slog.$f($*_, "apiSecret", $_, $*_)`,
		`slog.$f($*_, "authorization", $_, $*_)`).
		Report(`credential material must not be logged`)

	// The signed URL embeds the authorization value.
	m.Match(`slog.$f($*_, "url", $u, $*_)`).
		Where(m["u"].Text.Matches(`.*[Ss]igned.*`)).
		Report(`signed URLs carry the authorization parameter; log host and path instead`)
}

func errorHandling(m dsl.Matcher) {
	// Wrapped errors stay inspectable with errors.Is/As.
	m.Match(`fmt.Errorf($fmt, $*_, $err)`).
		Where(m["fmt"].Text.Matches(`.*%v"$`) && m["err"].Type.Is(`error`)).
		Report(`use %w so callers can unwrap the cause`)

	m.Match(`if $err != nil { return $err }; if $err2 != nil { return $err2 }`).
		Report(`consecutive identical guards; consider merging`)
}

func streaming(m dsl.Matcher) {
	// A response body opened for streaming must be closed on every
	// early-return path.
	m.Match(`$resp, $err := $c.Do($req); if $err != nil { return $*_ }; $_ = $resp.Body`).
		Report(`check the error before touching the body`)

	m.Match(`time.Sleep($_)`).
		Report(`no sleeps in library code; block on a context or channel instead`)
}
