package audio

import (
	"path/filepath"
	"strings"
)

const (
	RecordingName      = "meeting-recording.webm"
	RecordingMediaType = "audio/webm"
)

// Artifact is a finalized audio payload ready for transcription.
type Artifact struct {
	Name      string
	MediaType string
	Data      []byte
}

func (a Artifact) Size() int64 {
	return int64(len(a.Data))
}

var mediaTypesByExt = map[string]string{
	".mp3":  "audio/mpeg",
	".mpeg": "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".m4a":  "audio/m4a",
	".aac":  "audio/aac",
	".webm": "audio/webm",
	".weba": "audio/webm",
}

// MediaTypeFromPath guesses the media type from a file extension, or returns "" when unknown.
func MediaTypeFromPath(path string) string {
	ext := filepath.Ext(path)
	if mt, ok := mediaTypesByExt[strings.ToLower(ext)]; ok {
		return mt
	}
	return ""
}
