package transcriber

import (
	"github.com/foxseedlab/debrief/internal/config"
	"github.com/foxseedlab/debrief/internal/transcriber"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		if c.Transcriber == config.TranscriberCloudSpeech {
			return NewCloudSpeechTranscriber(CloudSpeechConfig{
				ProjectID:       c.GoogleCloudProjectID,
				CredentialsJSON: c.GoogleCloudCredentialsJSON,
				Language:        c.TranscribeLanguage,
				Location:        c.GoogleCloudSpeechLocation,
				Model:           c.GoogleCloudSpeechModel,
				FFmpegPath:      c.FFmpegPath,
			}), nil
		}
		return NewHTTPTranscriber(HTTPConfig{
			URL:      c.TranscriptionAPIURL,
			APIKey:   c.TranscriptionAPIKey,
			Model:    c.TranscriptionModel,
			Language: c.TranscribeLanguage,
		}), nil
	})
}
