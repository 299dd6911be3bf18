// Package debug provides category-based debug logging for spark-go.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): controlled via SPARK_DEBUG env or config
//   - Levels (HOW MUCH detail): controlled via SPARK_LOG_LEVEL env or config
//
// Usage:
//
//	debug.Log("client", "request", "method", "POST", "path", path)
//	if debug.Enabled("client") { /* expensive formatting */ }
//
// Categories: client, streaming, auth, embeddings, config, all.
// Levels: ERROR, WARN, INFO, DEBUG, TRACE.
//
// Every emission path runs through Redact, which masks the credential
// material this client handles: authorization and signature values in
// signed URLs, the signature field of a decoded authorization value,
// and api_secret values in config or request dumps. Callers do not
// need to pre-scrub; a signed URL handed to Log or Raw comes out with
// its secrets masked.
package debug

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

// LevelTrace is below slog.LevelDebug for maximum verbosity.
// At TRACE, full request/response bodies are logged (after redaction).
const LevelTrace = slog.LevelDebug - 4

// mask replaces a secret value wherever a redaction pattern matches.
const mask = "[redacted]"

// redactions cover the places credential material surfaces in this
// client: signed-URL query parameters, the quoted signature field of a
// decoded authorization value, and api_secret in YAML, JSON, or
// key=value form. Each pattern's first group is the prefix to keep.
var redactions = []*regexp.Regexp{
	regexp.MustCompile(`(authorization=)[^&\s"']+`),
	regexp.MustCompile(`(signature=\\?")[^"\\]+`),
	regexp.MustCompile(`(signature=)[^&\s"']+`),
	regexp.MustCompile(`(api_secret\\?"?\s*[:=]\s*\\?"?)[^"&,\s\\]+`),
}

// categories holds the set of enabled debug categories.
// Access is read-only after Init(), so no synchronization needed.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("SPARK_DEBUG"))
}

// Init configures the debug system from config values. The SPARK_DEBUG
// and SPARK_LOG_LEVEL environment variables take precedence so a
// deployment can raise verbosity without touching its config file.
func Init(configCategories string, configLevel string) {
	cats := os.Getenv("SPARK_DEBUG")
	if cats == "" {
		cats = configCategories
	}
	categories = parseCategories(cats)

	level := os.Getenv("SPARK_LOG_LEVEL")
	if level == "" {
		level = configLevel
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Redact masks credential material in s: authorization and signature
// query values, signature fields inside a decoded authorization value,
// and api_secret values. Everything else passes through unchanged.
func Redact(s string) string {
	for _, re := range redactions {
		s = re.ReplaceAllString(s, "${1}"+mask)
	}
	return s
}

// Log emits a debug message for the given category. String attribute
// values are redacted. A no-op when the category is off.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, redactArgs(category, args)...)
}

// Trace emits a trace-level message for the given category.
// Only visible when SPARK_LOG_LEVEL=TRACE.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(nil, LevelTrace, msg, redactArgs(category, args)...)
}

// redactArgs prepends the category attribute and scrubs string values.
// Keys are left alone; only values carry secrets.
func redactArgs(category string, args []any) []any {
	out := make([]any, 0, len(args)+2)
	out = append(out, "debug", category)
	for i, a := range args {
		if s, ok := a.(string); ok && i%2 == 1 {
			a = Redact(s)
		}
		out = append(out, a)
	}
	return out
}

// TraceIsEnabled reports whether TRACE output is active for the given
// category.
func TraceIsEnabled(category string) bool {
	return Enabled(category) && slog.Default().Enabled(nil, LevelTrace)
}

// Raw writes redacted plain text to stderr without slog formatting.
// Use this for copy-paste-ready output (full HTTP bodies, signed URLs).
// Only emitted when the category is enabled AND the level is TRACE.
func Raw(category string, text string) {
	if !TraceIsEnabled(category) {
		return
	}
	fmt.Fprintln(os.Stderr, Redact(text))
}

// ParseLevel converts a level string to a slog.Level. Unknown or empty
// input falls back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the list of enabled categories (for status reporting).
func Categories() []string {
	var result []string
	for k := range categories {
		result = append(result, k)
	}
	return result
}

// Truncate returns s truncated to maxLen characters, with "..." appended
// if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
