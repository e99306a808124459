package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/terminal-chat/modules/api"
	"github.com/example/terminal-chat/modules/auth"
	"github.com/example/terminal-chat/modules/broker"
	"github.com/example/terminal-chat/modules/files"
	"github.com/example/terminal-chat/modules/registry"
	"github.com/example/terminal-chat/modules/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Terminal Chat Broker ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	storeModule := store.NewModule()
	authModule := auth.NewModule()
	registryModule := registry.NewModule()
	brokerModule := broker.NewModule(storeModule, authModule, registryModule)
	filesModule := files.NewModule()
	apiModule := api.NewModule(storeModule, authModule, brokerModule, registryModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - store: SQLite persistence for rooms and messages
	// - auth: token issuing and validation
	// - registry: in-memory room membership
	// - broker: session state machine + event routing (EventEmitterModule)
	// - files: archives shared files to object storage (EventConsumerModule)
	// - api: driving adapter (Fiber HTTP/WebSocket server)
	app.Register(storeModule)
	app.Register(authModule)
	app.Register(registryModule)
	app.Register(brokerModule)
	app.Register(filesModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	log.Println("")
	log.Println("Broker started successfully!")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                      - Health check")
	log.Println("  POST   /chatrooms                   - Create a chat room")
	log.Println("  GET    /chatrooms                   - List chat rooms")
	log.Println("  GET    /chatrooms/:room/messages    - Recent message history")
	log.Println("  GET    /auth/tokens/:username       - Mint a session token")
	log.Println("")
	log.Printf("WebSocket Endpoint: ws://localhost:%s/ws", port)
	log.Println("  Event types: authenticate, join_room, chat_message, send_file, leave")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
