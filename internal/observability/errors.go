package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

var sentryEnabled bool

// InitErrorReporting configures sentry when dsn is set. The returned flush
// function drains buffered events on shutdown.
func InitErrorReporting(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return nil, err
	}
	sentryEnabled = true
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// ReportError forwards an unexpected error to sentry with request tags.
func ReportError(ctx context.Context, err error, tags map[string]string) {
	if !sentryEnabled || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}
