package testutil

import (
	"time"

	"github.com/skosovsky/toolhub"
)

// NewTestRegistry returns a Registry with the given tools registered,
// panicking on a name collision (a test setup bug, not a runtime case).
func NewTestRegistry(tools ...toolhub.Tool) *toolhub.Registry {
	reg := toolhub.NewRegistry()
	for _, t := range tools {
		if err := reg.Register(t); err != nil {
			panic(err)
		}
	}
	return reg
}

// NewTestDispatcher returns a Dispatcher with long timeout and panic
// recovery enabled, suitable for tests.
func NewTestDispatcher(reg *toolhub.Registry, opts ...toolhub.DispatcherOption) *toolhub.Dispatcher {
	base := []toolhub.DispatcherOption{
		toolhub.WithDefaultTimeout(30 * time.Second),
		toolhub.WithRecoverPanics(true),
	}
	return toolhub.NewDispatcher(reg, append(base, opts...)...)
}
