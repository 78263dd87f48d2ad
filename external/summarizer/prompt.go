package summarizer

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

const DefaultSystemPrompt = `You are a meeting assistant. Read the meeting transcript and respond with JSON only, in this shape:
{"summary": "<a concise paragraph covering the purpose, the discussion and the decisions>", "actionItems": ["<one concrete task per entry, naming the owner when the transcript does>"]}
Use an empty array when there are no action items. Do not wrap the JSON in markdown.`

type promptFile struct {
	SystemPrompt string `toml:"system_prompt"`
}

// LoadSystemPrompt reads system_prompt from a TOML file. An empty path or an
// empty key yields DefaultSystemPrompt.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return DefaultSystemPrompt, nil
	}
	var pf promptFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return "", fmt.Errorf("decode summary prompt file %s: %w", path, err)
	}
	if strings.TrimSpace(pf.SystemPrompt) == "" {
		return DefaultSystemPrompt, nil
	}
	return pf.SystemPrompt, nil
}
