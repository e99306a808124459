package registry

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
)

// Module owns the room registry's lifecycle: created at broker startup,
// cleared at shutdown.
type Module struct {
	registry *Registry
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new registry module.
func NewModule() *Module {
	return &Module{registry: NewRegistry()}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "registry"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[registry] Module started")
	return nil
}

// Stop clears all room membership.
func (m *Module) Stop(_ context.Context) error {
	m.registry.Clear()
	log.Println("[registry] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_rooms": m.registry.RoomCount(),
		},
	}
}

// Registry returns the room registry.
func (m *Module) Registry() *Registry {
	return m.registry
}
