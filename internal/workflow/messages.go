package workflow

import (
	"fmt"
	"strings"
)

const (
	messageBusy              = "Another operation is already in progress. Please wait for it to finish."
	messageNoTranscript      = "No transcript available to summarize"
	messageSummaryFirst      = "Please generate a summary first before sending emails"
	messageNoEmailAddress    = "Please enter at least one email address"
	messageWorkflowNotFound  = "Workflow not found. It may have expired."
	invalidEmailMessageStart = "Invalid email addresses: "
)

func invalidEmailsMessage(invalid []string) string {
	return invalidEmailMessageStart + strings.Join(invalid, ", ")
}

func emailBody(summaryText string) string {
	return fmt.Sprintf("Here is the debrief from your meeting.\n\n%s\n", summaryText)
}
