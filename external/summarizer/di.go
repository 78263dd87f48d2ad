package summarizer

import (
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/summarizer"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (summarizer.Summarizer, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.Summarizer == config.SummarizerGemini {
			prompt, err := LoadSystemPrompt(c.SummaryPromptFile)
			if err != nil {
				return nil, err
			}
			return NewGeminiSummarizer(GeminiConfig{
				APIKeys:      c.GeminiAPIKeys,
				Model:        c.GeminiModel,
				SystemPrompt: prompt,
			}), nil
		}
		return NewHTTPSummarizer(c.SummaryAPIURL, c.SummaryAPIKey), nil
	})
}
