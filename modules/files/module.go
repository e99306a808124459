package files

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/nats-io/nats.go"

	"github.com/example/terminal-chat/events"
)

// Module archives transferred file payloads by consuming FileSent events.
type Module struct {
	archive    Archive
	natsURL    string
	bucketName string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new files module.
func NewModule() *Module {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}
	return &Module{
		natsURL:    natsURL,
		bucketName: "chat-files",
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "files"
}

// Start connects to the object store.
func (m *Module) Start(ctx context.Context) error {
	archive, err := NewObjectArchive(m.natsURL, m.bucketName)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := archive.Init(ctx); err != nil {
		archive.Close()
		return fmt.Errorf("failed to init archive: %w", err)
	}

	m.archive = archive
	log.Printf("[files] Module started - archiving to bucket %s", m.bucketName)
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	if m.archive != nil {
		m.archive.Close()
	}
	log.Println("[files] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.archive != nil,
		Message: "operational",
		Details: map[string]any{
			"bucket": m.bucketName,
		},
	}
}

// RegisterEventConsumers subscribes to FileSent events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.FileSentV1, m.handleFileSent, m,
	); err != nil {
		return fmt.Errorf("failed to register FileSent consumer: %w", err)
	}

	log.Println("[files] Registered event consumers: FileSent")
	return nil
}

// handleFileSent archives one transferred payload. Failures are logged and
// not retried; archival is invisible to the chat flow.
func (m *Module) handleFileSent(ctx context.Context, event events.FileSentEvent, _ *mono.Msg) error {
	name := objectName(event.Room, event.MessageID, event.Filename)
	if err := m.archive.Put(ctx, name, event.Payload); err != nil {
		log.Printf("[files] Failed to archive %s: %v", name, err)
		return nil
	}

	log.Printf("[files] Archived %s (%d bytes) from %s", name, len(event.Payload), event.Username)
	return nil
}
