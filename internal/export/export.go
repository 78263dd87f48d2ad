package export

import (
	"context"
	"fmt"
	"strings"
)

const (
	FormatText = "txt"
	FormatDocx = "docx"
)

// SummaryText renders the summary block used for copy and download.
func SummaryText(summary string, actionItems []string) string {
	var b strings.Builder
	b.WriteString("Summary:\n")
	b.WriteString(summary)
	b.WriteString("\n\nAction Items:\n")
	for i, item := range actionItems {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, item)
	}
	return b.String()
}

func SummaryFilename(sourceName, format string) string {
	if sourceName == "" {
		sourceName = "meeting"
	}
	return sourceName + "_summary." + extension(format)
}

func TranscriptFilename(sourceName, format string) string {
	if sourceName == "" {
		sourceName = "transcript"
	}
	return sourceName + "." + extension(format)
}

func extension(format string) string {
	if format == FormatDocx {
		return FormatDocx
	}
	return FormatText
}

type DocumentRenderer interface {
	RenderSummary(ctx context.Context, title, summary string, actionItems []string) ([]byte, error)
	RenderTranscript(ctx context.Context, title, transcript string) ([]byte, error)
}
