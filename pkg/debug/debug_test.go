package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "client", map[string]bool{"client": true}},
		{"multiple", "client,streaming", map[string]bool{"client": true, "streaming": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " client , streaming ", map[string]bool{"client": true, "streaming": true}},
		{"uppercase normalized", "CLIENT,Streaming", map[string]bool{"client": true, "streaming": true}},
		{"empty segments", "client,,streaming", map[string]bool{"client": true, "streaming": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	// Save and restore.
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("client,streaming")

	if !Enabled("client") {
		t.Error("client should be enabled")
	}
	if !Enabled("streaming") {
		t.Error("streaming should be enabled")
	}
	if Enabled("embeddings") {
		t.Error("embeddings should not be enabled")
	}
	if Enabled("all") {
		t.Error("all should not be enabled (not in categories)")
	}
}

func TestEnabled_All(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("all")

	if !Enabled("client") {
		t.Error("client should be enabled via 'all'")
	}
	if !Enabled("auth") {
		t.Error("auth should be enabled via 'all'")
	}
	if !Enabled("anything") {
		t.Error("anything should be enabled via 'all'")
	}
}

func TestEnabled_Empty(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("")

	if Enabled("client") {
		t.Error("nothing should be enabled when no categories set")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"TRACE", LevelTrace},
		{"trace", LevelTrace},
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate short = %q, want %q", got, "short")
	}
	if got := Truncate("this is a long string", 10); got != "this is a ..." {
		t.Errorf("Truncate long = %q, want %q", got, "this is a ...")
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"signed url",
			"https://spark-api.xf-yun.com/v1.1/chat?authorization=YXBpX2tleT0i&date=Fri%2C+05+May&host=spark-api.xf-yun.com",
			"https://spark-api.xf-yun.com/v1.1/chat?authorization=[redacted]&date=Fri%2C+05+May&host=spark-api.xf-yun.com",
		},
		{
			"decoded authorization value",
			`api_key="KEY", algorithm="hmac-sha256", headers="host date request-line", signature="PEnMeUimjfk="`,
			`api_key="KEY", algorithm="hmac-sha256", headers="host date request-line", signature="[redacted]"`,
		},
		{
			"yaml secret",
			"api_key: KEY\napi_secret: SECRET_KEY\n",
			"api_key: KEY\napi_secret: [redacted]\n",
		},
		{
			"json secret",
			`{"api_key":"KEY","api_secret":"SECRET_KEY"}`,
			`{"api_key":"KEY","api_secret":"[redacted]"}`,
		},
		{
			"no secrets untouched",
			`{"model":"generalv3.5","messages":[{"role":"user","content":"hi"}]}`,
			`{"model":"generalv3.5","messages":[{"role":"user","content":"hi"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.input); got != tt.want {
				t.Errorf("Redact() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLog_RedactsStringValues(t *testing.T) {
	origCats, origLogger := categories, slog.Default()
	defer func() {
		categories = origCats
		slog.SetDefault(origLogger)
	}()

	categories = parseCategories("client")
	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	Log("client", "sending request",
		"url", "https://spark-api.xf-yun.com/v1.1/chat?authorization=TOPSECRETVALUE&date=x&host=h")

	out := buf.String()
	if strings.Contains(out, "TOPSECRETVALUE") {
		t.Errorf("authorization value leaked into log output: %s", out)
	}
	if !strings.Contains(out, "[redacted]") {
		t.Errorf("expected redaction marker in log output: %s", out)
	}
}

func TestLog_DisabledCategory(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("")

	// Should not panic or produce output.
	Log("client", "test message", "key", "value")
	Trace("client", "trace message", "key", "value")
}
