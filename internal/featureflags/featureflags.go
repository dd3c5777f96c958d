// Package featureflags exposes the storefront's remotely controlled flags.
// Until Init succeeds (or when no key is configured) every flag reports its
// default value.
package featureflags

import (
	"context"
	"errors"
	"sync"

	"github.com/rollout/rox-go/v5/server"
)

// Namespace under which the flags are registered with Rollout.
const Namespace = "homieproStorefront"

// ErrNoKey is returned by Init when no Rollout environment key is set.
var ErrNoKey = errors.New("featureflags: no rollout key configured")

// Flags is the registered flag container.
type Flags struct {
	// Offline blocks every non-health request with 503.
	Offline server.RoxFlag
	// AssistantEnabled gates the chat endpoint.
	AssistantEnabled server.RoxFlag
	LogLevel         server.RoxString
}

var (
	values = &Flags{
		Offline:          server.NewRoxFlag(false),
		AssistantEnabled: server.NewRoxFlag(true),
		LogLevel:         server.NewRoxString("info", []string{"debug", "info", "warn", "error"}),
	}

	mu  sync.Mutex
	rox *server.Rox
)

// Values returns the flag container.
func Values() *Flags {
	return values
}

// Init registers the flags and waits for the first configuration fetch or
// for ctx to expire, whichever comes first.
func Init(ctx context.Context, key string) error {
	if key == "" {
		return ErrNoKey
	}

	mu.Lock()
	defer mu.Unlock()
	if rox != nil {
		return nil
	}

	r := server.NewRox()
	r.Register(Namespace, values)
	ready := r.Setup(key, server.NewRoxOptions(server.RoxOptionsBuilder{}))
	rox = r

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops the Rollout client if one was started.
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if rox != nil {
		rox.Shutdown()
		rox = nil
	}
}
