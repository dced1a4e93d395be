package page

import (
	"github.com/sirupsen/logrus"
)

// LogNotifier writes toasts to the log, terminal shells have no toast
// widget.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger,
	}
}

func (notifier *LogNotifier) Success(message string) {
	notifier.logger.Infof("toast: %s", message)
}

func (notifier *LogNotifier) Error(message string) {
	notifier.logger.Errorf("toast: %s", message)
}
