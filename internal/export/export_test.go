package export

import "testing"

func TestSummaryText(t *testing.T) {
	got := SummaryText("Shipped the beta.", []string{"Email Dana", "Book retro"})
	want := "Summary:\nShipped the beta.\n\nAction Items:\n1. Email Dana\n2. Book retro"
	if got != want {
		t.Fatalf("unexpected summary text:\n%q\nwant\n%q", got, want)
	}
}

func TestSummaryText_NoActionItems(t *testing.T) {
	got := SummaryText("Nothing to do.", nil)
	if got != "Summary:\nNothing to do.\n\nAction Items:\n" {
		t.Fatalf("unexpected summary text: %q", got)
	}
}

func TestFilenames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "summary with source", got: SummaryFilename("standup.mp3", FormatText), want: "standup.mp3_summary.txt"},
		{name: "summary without source", got: SummaryFilename("", FormatText), want: "meeting_summary.txt"},
		{name: "summary docx", got: SummaryFilename("", FormatDocx), want: "meeting_summary.docx"},
		{name: "transcript with source", got: TranscriptFilename("standup.mp3", FormatText), want: "standup.mp3.txt"},
		{name: "transcript without source", got: TranscriptFilename("", ""), want: "transcript.txt"},
		{name: "transcript docx", got: TranscriptFilename("call.wav", FormatDocx), want: "call.wav.docx"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
