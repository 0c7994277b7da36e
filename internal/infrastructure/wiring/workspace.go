// Package wiring assembles repositories, stores, and services for a workspace.
package wiring

import (
	"context"
	"path/filepath"

	webhook "github.com/felixgeelhaar/onsite/internal/infrastructure/webhook"
	"github.com/felixgeelhaar/onsite/pkg/application"
	"github.com/felixgeelhaar/onsite/pkg/domain/events"
	"github.com/felixgeelhaar/onsite/pkg/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo      *storage.FilesystemRepository
	Audit     *application.AuditService
	Publisher *storage.InMemoryEventPublisher
	Notifier  *webhook.Notifier
}

func NewWorkspace(root string) *Workspace {
	repo := storage.NewFilesystemRepository(root)
	publisher := storage.NewInMemoryEventPublisher()

	// Load webhook config and create notifier if configured
	var notifier *webhook.Notifier
	if config, err := repo.LoadWebhookConfig(); err == nil && len(config.Webhooks) > 0 {
		dlPath := filepath.Join(root, storage.OnsiteDir, storage.DeadLetterFile)
		dlStore := webhook.NewDeadLetterStore(dlPath)
		notifier = webhook.NewNotifier(config.Webhooks, dlStore)

		publisher.Subscribe(func(e *events.BaseEvent) error {
			notifier.Notify(context.Background(), e)
			return nil
		})
	}

	return &Workspace{
		Repo:      repo,
		Audit:     application.NewAuditService(repo),
		Publisher: publisher,
		Notifier:  notifier,
	}
}
