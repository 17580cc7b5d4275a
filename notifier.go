package auth

import "context"

type noopNotifier struct{}

func (noopNotifier) SendVerificationEmail(context.Context, string, string, string) error { return nil }
func (noopNotifier) SendWelcomeEmail(context.Context, string, string) error              { return nil }
func (noopNotifier) SendPasswordResetEmail(context.Context, string, string) error        { return nil }
func (noopNotifier) SendResetSuccessEmail(context.Context, string) error                 { return nil }
func (noopNotifier) SendChangePasswordEmail(context.Context, string) error               { return nil }

func normalizeNotifier(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
