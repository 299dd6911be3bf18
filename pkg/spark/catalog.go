package spark

// ModelInfo describes one chat model family. Spark selects the family
// by endpoint path, so each entry carries the path to put in Config.
type ModelInfo struct {
	// Name is the value sent in the request model field.
	Name string
	// Path is the chat endpoint serving this family.
	Path string
	// ContextTokens is the documented context window.
	ContextTokens int
	// SupportsTools reports whether function calling is available.
	SupportsTools bool
	Description   string
}

// catalog holds the documented families. The protocol has no listing
// endpoint, so this is maintained by hand against the provider docs.
var catalog = []ModelInfo{
	{Name: "lite", Path: "/v1.1/chat", ContextTokens: 4096, Description: "lightweight, low latency"},
	{Name: "generalv3", Path: "/v3.1/chat", ContextTokens: 8192, SupportsTools: true, Description: "Spark Pro"},
	{Name: "pro-128k", Path: "/chat/pro-128k", ContextTokens: 131072, Description: "Spark Pro with long context"},
	{Name: DefaultChatModel, Path: "/v3.5/chat", ContextTokens: 8192, SupportsTools: true, Description: "Spark Max"},
	{Name: "max-32k", Path: "/chat/max-32k", ContextTokens: 32768, SupportsTools: true, Description: "Spark Max with long context"},
	{Name: "4.0Ultra", Path: "/v4.0/chat", ContextTokens: 8192, SupportsTools: true, Description: "Spark 4.0 Ultra"},
}

// ChatModels lists the known chat model families.
func ChatModels() []ModelInfo {
	out := make([]ModelInfo, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModel finds a family by wire name.
func LookupModel(name string) (ModelInfo, bool) {
	for _, m := range catalog {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}
