package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"cloud.google.com/go/auth/credentials"
	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/debrief/internal/audio"
	"github.com/foxseedlab/debrief/internal/transcriber"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	speechAPIEndpointPort = 443
	pcmSampleRateHertz    = 16000
	pcmBytesPerSecond     = pcmSampleRateHertz * 2

	// Each request stays under the per-message audio limit and each stream
	// under the five minute streaming limit.
	streamChunkBytes   = pcmBytesPerSecond / 2
	streamSegmentBytes = pcmBytesPerSecond * 240
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Language        string
	Location        string
	Model           string
	FFmpegPath      string
}

type openStreamFunc func(ctx context.Context) (speechpb.Speech_StreamingRecognizeClient, error)

// CloudSpeechTranscriber decodes the recording to 16 kHz mono PCM with ffmpeg
// and streams it to Speech v2, one stream per four minute segment.
type CloudSpeechTranscriber struct {
	projectID       string
	credentialsJSON string
	language        string
	location        string
	model           string
	ffmpegPath      string

	decode func(ctx context.Context, data []byte) ([]byte, error)
}

func NewCloudSpeechTranscriber(cfg CloudSpeechConfig) transcriber.Transcriber {
	location := strings.TrimSpace(cfg.Location)
	if location == "" {
		location = "global"
	}
	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	t := &CloudSpeechTranscriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		language:        cfg.Language,
		location:        location,
		model:           strings.TrimSpace(cfg.Model),
		ffmpegPath:      ffmpegPath,
	}
	t.decode = t.decodePCM
	return t
}

func (t *CloudSpeechTranscriber) Transcribe(ctx context.Context, artifact audio.Artifact) (string, error) {
	slog.Info("starting cloud speech recognition", "location", t.location, "language", t.language, "model", t.model, "bytes", artifact.Size())

	pcm, err := t.decode(ctx, artifact.Data)
	if err != nil {
		return "", err
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(t.credentialsJSON),
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return "", fmt.Errorf("detect credentials: %w", err)
	}

	opts := []option.ClientOption{
		option.WithAuthCredentials(creds),
	}
	if t.location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", t.location, speechAPIEndpointPort)))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = client.Close()
	}()

	text, err := t.transcribePCM(ctx, pcm, func(ctx context.Context) (speechpb.Speech_StreamingRecognizeClient, error) {
		return client.StreamingRecognize(ctx)
	})
	if err != nil {
		if isQuotaError(err) {
			slog.Warn("cloud speech quota exhausted", "error", err)
		}
		return "", err
	}
	slog.Info("cloud speech recognition finished", "audio_seconds", len(pcm)/pcmBytesPerSecond, "transcript_chars", len(text))
	return text, nil
}

func (t *CloudSpeechTranscriber) transcribePCM(ctx context.Context, pcm []byte, open openStreamFunc) (string, error) {
	var parts []string
	for i, segment := range splitPCM(pcm, streamSegmentBytes) {
		texts, err := t.recognizeSegment(ctx, segment, open)
		if err != nil && isReconnectableStreamError(err) {
			slog.Warn("cloud speech stream aborted; retrying segment", "segment", i, "error", err)
			texts, err = t.recognizeSegment(ctx, segment, open)
		}
		if err != nil {
			return "", fmt.Errorf("recognize segment %d: %w", i, err)
		}
		parts = append(parts, texts...)
	}
	return strings.Join(parts, " "), nil
}

type segmentResult struct {
	texts []string
	err   error
}

// recognizeSegment sends one segment on a fresh stream and collects the final
// results while the audio is still being sent.
func (t *CloudSpeechTranscriber) recognizeSegment(ctx context.Context, segment []byte, open openStreamFunc) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := open(ctx)
	if err != nil {
		return nil, err
	}
	if err := stream.Send(t.configRequest()); err != nil {
		_ = stream.CloseSend()
		return nil, err
	}

	done := make(chan segmentResult, 1)
	go func() {
		var texts []string
		for {
			resp, err := stream.Recv()
			if err == io.EOF {
				done <- segmentResult{texts: texts}
				return
			}
			if err != nil {
				done <- segmentResult{err: err}
				return
			}
			texts = append(texts, finalTranscripts(resp.GetResults())...)
		}
	}()

	var sendErr error
	for _, chunk := range splitPCM(segment, streamChunkBytes) {
		req := &speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_Audio{
				Audio: chunk,
			},
		}
		// A failed Send surfaces its status through Recv.
		if sendErr = stream.Send(req); sendErr != nil {
			break
		}
	}
	_ = stream.CloseSend()

	res := <-done
	if res.err == nil && sendErr != nil {
		res.err = fmt.Errorf("send audio: %w", sendErr)
	}
	return res.texts, res.err
}

func (t *CloudSpeechTranscriber) configRequest() *speechpb.StreamingRecognizeRequest {
	return &speechpb.StreamingRecognizeRequest{
		Recognizer: fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location),
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Model:         t.model,
					LanguageCodes: []string{t.language},
					DecodingConfig: &speechpb.RecognitionConfig_ExplicitDecodingConfig{
						ExplicitDecodingConfig: &speechpb.ExplicitDecodingConfig{
							Encoding:          speechpb.ExplicitDecodingConfig_LINEAR16,
							SampleRateHertz:   pcmSampleRateHertz,
							AudioChannelCount: 1,
						},
					},
					Features: &speechpb.RecognitionFeatures{
						EnableAutomaticPunctuation: true,
					},
				},
			},
		},
	}
}

// decodePCM goes through a temp file because MP4-family inputs cannot be
// demuxed from a pipe.
func (t *CloudSpeechTranscriber) decodePCM(ctx context.Context, data []byte) ([]byte, error) {
	f, err := os.CreateTemp("", "debrief-audio-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.ffmpegPath, decodeArgs(f.Name())...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("decode audio with ffmpeg: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func decodeArgs(input string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", input,
		"-f", "s16le", "-acodec", "pcm_s16le",
		"-ac", "1", "-ar", strconv.Itoa(pcmSampleRateHertz),
		"pipe:1",
	}
}

// splitPCM cuts on even sizes so every piece holds whole 16-bit samples.
func splitPCM(pcm []byte, size int) [][]byte {
	var out [][]byte
	for len(pcm) > 0 {
		n := min(size, len(pcm))
		out = append(out, pcm[:n])
		pcm = pcm[n:]
	}
	return out
}

func finalTranscripts(results []*speechpb.StreamingRecognitionResult) []string {
	var texts []string
	for _, result := range results {
		alts := result.GetAlternatives()
		if !result.GetIsFinal() || len(alts) == 0 {
			continue
		}
		if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

func isQuotaError(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.ResourceExhausted
}

func isReconnectableStreamError(err error) bool {
	if err == io.EOF || strings.Contains(strings.ToLower(err.Error()), "eof") {
		return true
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Aborted {
		return false
	}
	msg := strings.ToLower(st.Message())
	return strings.Contains(msg, "max duration of 5 minutes") ||
		strings.Contains(msg, "stream timed out after receiving no more client requests")
}
