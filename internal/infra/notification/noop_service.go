package notification

import (
	"context"
	"log/slog"

	"fleetwatch/internal/domain/service"
)

// noopService drops notifications when Firebase is not configured.
// Maintenance alerts then only appear in the insight responses.
type noopService struct {
	logger *slog.Logger
}

// NewNoopService creates a notification service that logs and discards.
func NewNoopService(logger *slog.Logger) service.NotificationService {
	return &noopService{logger: logger}
}

func (s *noopService) SendSingleNotification(_ context.Context, _, title, _ string, _ map[string]string) error {
	s.logger.Debug("[NoopNotification] Dropping notification", slog.String("title", title))

	return nil
}

func (s *noopService) SendBatchNotification(_ context.Context, tokens []string, title, _ string, _ map[string]string) (int, int, []string, error) {
	s.logger.Debug("[NoopNotification] Dropping batch notification",
		slog.String("title", title),
		slog.Int("tokens", len(tokens)),
	)

	return len(tokens), 0, nil, nil
}
