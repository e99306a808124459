package auth

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-monolith/mono"
)

// Module provides the token issuer for connection authentication.
type Module struct {
	issuer *TokenIssuer
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new auth module. The signing secret comes from
// JWT_SECRET; the insecure default is for local development only.
func NewModule() *Module {
	config := DefaultConfig()
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.SecretKey = secret
	}
	if d := os.Getenv("TOKEN_DURATION"); d != "" {
		if parsed, err := time.ParseDuration(d); err == nil {
			config.TokenDuration = parsed
		}
	}
	return &Module{issuer: NewTokenIssuer(config)}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "auth"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[auth] Module started - token issuer ready")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[auth] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// Issuer returns the token issuer.
func (m *Module) Issuer() *TokenIssuer {
	return m.issuer
}
