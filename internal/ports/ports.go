package ports

import "context"

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Notifier delivers a message to a customer's mobile number. Delivery
// is fire-and-forget: failures must never affect the operation that
// triggered the notification.
type Notifier interface {
	Send(ctx context.Context, mobile, message string) error
}
