package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	writerNotConfiguredMessageConstant = "notifier writer not configured"
	titleLineTemplateConstant          = "%s\n"
	detailLineTemplateConstant         = "  %s\n"
	severityPrefixTemplateConstant     = "%s: %s"
	notificationLogFieldTitleConstant  = "title"
	notificationLogFieldLinesConstant  = "details"
	warningPrefixConstant              = "WARNING"
	errorPrefixConstant                = "ERROR"
)

// Severity classifies a notification.
type Severity string

// Supported severities.
const (
	SeverityInformation Severity = "information"
	SeverityWarning     Severity = "warning"
	SeverityError       Severity = "error"
)

// ErrWriterNotConfigured indicates that the notifier was constructed without a writer.
var ErrWriterNotConfigured = errors.New(writerNotConfiguredMessageConstant)

// Notification is a titled message with optional detail lines.
type Notification struct {
	Severity Severity
	Title    string
	Details  []string
}

// Notifier delivers notifications to the operator.
type Notifier interface {
	Notify(notification Notification) error
}

// WriterNotifier prints notifications to a writer and mirrors them to a logger.
type WriterNotifier struct {
	writer io.Writer
	logger *zap.Logger
}

// NewWriterNotifier constructs a WriterNotifier. A nil logger disables mirroring.
func NewWriterNotifier(writer io.Writer, logger *zap.Logger) (*WriterNotifier, error) {
	if writer == nil {
		return nil, ErrWriterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WriterNotifier{writer: writer, logger: logger}, nil
}

// Notify renders the title followed by indented detail lines.
func (notifier *WriterNotifier) Notify(notification Notification) error {
	title := strings.TrimSpace(notification.Title)
	switch notification.Severity {
	case SeverityWarning:
		title = fmt.Sprintf(severityPrefixTemplateConstant, warningPrefixConstant, title)
	case SeverityError:
		title = fmt.Sprintf(severityPrefixTemplateConstant, errorPrefixConstant, title)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(titleLineTemplateConstant, title))
	for _, detail := range notification.Details {
		builder.WriteString(fmt.Sprintf(detailLineTemplateConstant, detail))
	}
	if _, writeError := io.WriteString(notifier.writer, builder.String()); writeError != nil {
		return writeError
	}

	fields := []zap.Field{
		zap.String(notificationLogFieldTitleConstant, strings.TrimSpace(notification.Title)),
		zap.Strings(notificationLogFieldLinesConstant, notification.Details),
	}
	switch notification.Severity {
	case SeverityWarning:
		notifier.logger.Warn(notification.Title, fields...)
	case SeverityError:
		notifier.logger.Error(notification.Title, fields...)
	default:
		notifier.logger.Debug(notification.Title, fields...)
	}
	return nil
}
