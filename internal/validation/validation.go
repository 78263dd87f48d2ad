package validation

import (
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/foxseedlab/debrief/internal/apperror"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const MaxAudioFileSize int64 = 50 * 1024 * 1024

const (
	MessageUnsupportedAudioType = "Please upload a valid audio file (MP3, WAV, OGG, M4A, AAC, or WebM)"
	MessageAudioTooLarge        = "File size must be less than 50MB"

	messageNetwork    = "Network error: Unable to connect to the service. Please check your internet connection."
	messageAPIKey     = "API key error: Please check your API key configuration."
	messageParsing    = "Response parsing error: The service returned an unexpected response format."
	messageCORS       = "CORS error: The server is not allowing requests from this domain."
	messageNotFound   = "API endpoint not found. Please check if the endpoint is available."
	messageServer     = "Server error: There was an issue processing your request on the server."
	messageUnexpected = "An unexpected error occurred"
)

var supportedAudioTypes = []string{
	"audio/mpeg",
	"audio/mp3",
	"audio/wav",
	"audio/ogg",
	"audio/m4a",
	"audio/aac",
	"audio/webm",
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type AudioFile struct {
	Name      string
	MediaType string
	Size      int64
}

type EmailValidation struct {
	Valid   []string `json:"valid"`
	Invalid []string `json:"invalid"`
}

// ValidateAudioFile checks the declared media type before the size.
func ValidateAudioFile(f AudioFile) error {
	if !IsSupportedAudioType(f.MediaType) {
		return apperror.Validation(MessageUnsupportedAudioType)
	}
	if f.Size > MaxAudioFileSize {
		return apperror.Validation(MessageAudioTooLarge)
	}
	return nil
}

func IsSupportedAudioType(mediaType string) bool {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	for _, t := range supportedAudioTypes {
		if base == t {
			return true
		}
	}
	return false
}

func SupportedAudioTypes() []string {
	out := make([]string, len(supportedAudioTypes))
	copy(out, supportedAudioTypes)
	return out
}

func ValidateEmails(text string) EmailValidation {
	result := EmailValidation{Valid: []string{}, Invalid: []string{}}
	for _, raw := range strings.Split(text, ",") {
		email := strings.TrimSpace(raw)
		if email == "" {
			continue
		}
		if IsValidEmail(email) {
			result.Valid = append(result.Valid, email)
		} else {
			result.Invalid = append(result.Invalid, email)
		}
	}
	return result
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type errorCategory struct {
	message string
	match   func(err error, text string) bool
}

// Categories are checked in order; the first match wins.
var errorCategories = []errorCategory{
	{message: messageNetwork, match: isNetworkError},
	{message: messageAPIKey, match: func(err error, text string) bool {
		return strings.Contains(text, "API key") ||
			hasStatus(err, http.StatusUnauthorized, http.StatusForbidden) ||
			hasCode(err, codes.Unauthenticated, codes.PermissionDenied)
	}},
	{message: messageParsing, match: func(err error, text string) bool {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		return strings.Contains(text, "JSON") || errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
	}},
	{message: messageCORS, match: func(_ error, text string) bool {
		return strings.Contains(text, "CORS")
	}},
	{message: messageNotFound, match: func(err error, text string) bool {
		return strings.Contains(text, "404") || hasStatus(err, http.StatusNotFound) || hasCode(err, codes.NotFound)
	}},
	{message: messageServer, match: func(err error, text string) bool {
		var statusErr *apperror.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusInternalServerError {
			return true
		}
		return strings.Contains(text, "500") || hasCode(err, codes.Internal)
	}},
}

// FormatErrorMessage maps err to a user-facing message.
func FormatErrorMessage(err error) string {
	if err == nil {
		return messageUnexpected
	}
	text := err.Error()
	for _, c := range errorCategories {
		if c.match(err, text) {
			return c.message
		}
	}
	if text == "" {
		return messageUnexpected
	}
	return text
}

// isNetworkError matches transport failures. A *url.Error only counts when its
// cause is itself a network error or a timeout, so a bad endpoint scheme keeps
// its own message.
func isNetworkError(err error, _ string) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		var cause net.Error
		return errors.As(urlErr.Err, &cause)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return hasCode(err, codes.Unavailable)
}

func hasStatus(err error, statusCodes ...int) bool {
	var statusErr *apperror.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	for _, c := range statusCodes {
		if statusErr.StatusCode == c {
			return true
		}
	}
	return false
}

func hasCode(err error, grpcCodes ...codes.Code) bool {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return false
	}
	for _, c := range grpcCodes {
		if st.Code() == c {
			return true
		}
	}
	return false
}
