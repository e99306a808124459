package broker

import (
	"context"
	"log"

	"github.com/go-monolith/mono"

	chat "github.com/example/terminal-chat/domain/chat"
	"github.com/example/terminal-chat/events"
	"github.com/example/terminal-chat/modules/auth"
	"github.com/example/terminal-chat/modules/registry"
	"github.com/example/terminal-chat/modules/store"
)

// Module hosts the event router and emits chat lifecycle events on the bus.
type Module struct {
	router *Router
	store  *store.Module
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventBusAwareModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)

// NewModule creates the broker module over its collaborators. The store's
// repository does not exist until the store module starts, so database
// access goes through a lazy adapter.
func NewModule(storeModule *store.Module, authModule *auth.Module, registryModule *registry.Module) *Module {
	m := &Module{store: storeModule}
	m.router = NewRouter(
		&lazyStore{module: storeModule},
		authModule.Issuer(),
		registryModule.Registry(),
	)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broker"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.router.SetEventBus(bus)
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
		events.FileSentV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
	}
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[broker] Module started - event router ready")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[broker] Module stopped")
	return nil
}

// Router returns the event router for the transport layer.
func (m *Module) Router() *Router {
	return m.router
}

// lazyStore defers repository lookup until first use, after the store
// module's Start has opened the database.
type lazyStore struct {
	module *store.Module
}

func (s *lazyStore) RoomExists(ctx context.Context, name string) (bool, error) {
	return s.module.Repo().RoomExists(ctx, name)
}

func (s *lazyStore) AppendMessage(ctx context.Context, msg chat.Message) (*chat.Message, error) {
	return s.module.Repo().AppendMessage(ctx, msg)
}

func (s *lazyStore) RecentMessages(ctx context.Context, room string, limit int) ([]chat.Message, error) {
	return s.module.Repo().RecentMessages(ctx, room, limit)
}
