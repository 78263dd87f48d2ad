package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/foxseedlab/debrief/internal/export"
	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName      = "Calibri"
	fontSize      = 11
	titleFontSize = 16
	headingSize   = 13
	textColor     = "000000"
)

// DocxRenderer lays out summaries and transcripts as Word documents.
type DocxRenderer struct {
	tempDir string
}

func NewDocxRenderer() export.DocumentRenderer {
	return &DocxRenderer{}
}

func (r *DocxRenderer) RenderSummary(ctx context.Context, title, summary string, actionItems []string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	addRun(doc.AddParagraph(""), title, true, titleFontSize)

	addRun(doc.AddParagraph(""), "Summary", true, headingSize)
	for _, line := range paragraphs(summary) {
		addRun(doc.AddParagraph(""), line, false, fontSize)
	}

	addRun(doc.AddParagraph(""), "Action Items", true, headingSize)
	for i, item := range actionItems {
		addRun(doc.AddParagraph(""), fmt.Sprintf("%d. %s", i+1, item), false, fontSize)
	}
	return r.save(ctx, doc)
}

func (r *DocxRenderer) RenderTranscript(ctx context.Context, title, transcript string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	addRun(doc.AddParagraph(""), title, true, titleFontSize)
	doc.AddParagraph("")
	for _, line := range paragraphs(transcript) {
		addRun(doc.AddParagraph(""), line, false, fontSize)
	}
	return r.save(ctx, doc)
}

// save writes through a temporary file because godocx only saves to a path.
func (r *DocxRenderer) save(ctx context.Context, doc *docx.RootDoc) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp(r.tempDir, "debrief-docx-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()
	path := filepath.Join(dir, "document.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return os.ReadFile(path)
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color(textColor)
	if bold {
		run.Bold(true)
	}
}

func paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
