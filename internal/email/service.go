package email

import (
	"context"
)

// Service sends outbound mail. All sends are fire-and-forget from the
// caller's perspective: a failure must never roll back the operation that
// triggered it.
type Service interface {
	SendWelcome(ctx context.Context, to, name, loginURL string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}
