package verify

import (
	"context"

	"github.com/dmitrijs2005/tripti/internal/logging"
)

// LogNotifier writes codes to the log instead of sending them. Development
// only: anyone reading the log can use the code.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Deliver(ctx context.Context, subject, code string) error {
	n.log.Info(ctx, "dev mode: verification code", "to", subject, "code", code)
	return nil
}
