package spark

import "testing"

func TestLookupModel(t *testing.T) {
	info, ok := LookupModel(DefaultChatModel)
	if !ok {
		t.Fatalf("default model %q missing from catalog", DefaultChatModel)
	}
	if info.Path != "/v3.5/chat" {
		t.Errorf("path = %q, want /v3.5/chat", info.Path)
	}
	if !info.SupportsTools {
		t.Error("default model should support tools")
	}

	if _, ok := LookupModel("no-such-model"); ok {
		t.Error("unknown model should not resolve")
	}
}

func TestChatModels_ReturnsCopy(t *testing.T) {
	models := ChatModels()
	if len(models) == 0 {
		t.Fatal("catalog is empty")
	}

	models[0].Name = "mutated"
	if fresh := ChatModels(); fresh[0].Name == "mutated" {
		t.Error("ChatModels must not expose the underlying catalog")
	}
}

func TestCatalogEntriesComplete(t *testing.T) {
	for _, m := range ChatModels() {
		if m.Name == "" || m.Path == "" || m.ContextTokens == 0 {
			t.Errorf("incomplete catalog entry: %+v", m)
		}
	}
}
