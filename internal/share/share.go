package share

import "context"

// Debrief is the delivered result announced to a shared channel.
type Debrief struct {
	WorkflowID  string
	SourceName  string
	Summary     string
	ActionItems []string
	Recipients  []string
}

type Notifier interface {
	NotifyDebrief(ctx context.Context, d Debrief) error
}

type noopNotifier struct{}

func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyDebrief(context.Context, Debrief) error {
	return nil
}
