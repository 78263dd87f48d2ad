package summarizer

import "context"

type Result struct {
	Summary     string   `json:"summary"`
	ActionItems []string `json:"actionItems"`
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (Result, error)
}
