package stream

// The generation backend's payload shapes drift: the same logical value
// shows up under different field names depending on frame and backend
// version. Each extractor below probes one logical value and returns
// ok=false when absent; call sites compose them first-match-wins instead of
// scattering property probes around.

func extractString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func extractChatID(m map[string]any) (string, bool) {
	if s, ok := extractString(m, "chatId", "chat_id"); ok {
		return s, true
	}
	// A bare "id" counts only on frames that look like a chat object.
	if _, hasMessages := m["messages"]; hasMessages {
		return extractString(m, "id")
	}
	if _, hasDemo := m["demo"]; hasDemo {
		return extractString(m, "id")
	}
	return "", false
}

func extractVersionID(m map[string]any) (string, bool) {
	if s, ok := extractString(m, "versionId", "version_id"); ok {
		return s, true
	}
	if lv, ok := m["latestVersion"].(map[string]any); ok {
		return extractString(lv, "id")
	}
	return "", false
}

func extractDemoURL(m map[string]any) (string, bool) {
	return extractString(m, "demoUrl", "demo_url", "demo", "webUrl")
}

func extractThinking(m map[string]any) (string, bool) {
	return extractString(m, "thinking", "reasoning")
}

func extractContent(m map[string]any) (string, bool) {
	return extractString(m, "content", "text", "delta")
}

func extractParts(m map[string]any) ([]any, bool) {
	if v, ok := m["parts"].([]any); ok && len(v) > 0 {
		return v, true
	}
	return nil, false
}
