package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/foxseedlab/debrief/internal/summarizer"
)

type summaryPayload struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"actionItems"`
}

// parseResult decodes a {summary, actionItems} object, tolerating a markdown
// code fence around it.
func parseResult(raw string) (summarizer.Result, error) {
	text := stripCodeFence(raw)
	var p summaryPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return summarizer.Result{}, fmt.Errorf("invalid JSON from summary service: %w", err)
	}
	return toResult(p), nil
}

func toResult(p summaryPayload) summarizer.Result {
	items := make([]string, 0, len(p.ActionItems))
	for _, item := range p.ActionItems {
		if s := strings.TrimSpace(item); s != "" {
			items = append(items, s)
		}
	}
	return summarizer.Result{
		Summary:     strings.TrimSpace(p.Summary),
		ActionItems: items,
	}
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
