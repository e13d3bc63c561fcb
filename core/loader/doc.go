// Package loader mounts features on the HTTP router.
//
// A feature bundles a service, its handler and its routes behind a small interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps features in registration order. LoadAll skips disabled ones
// (the planning feature is disabled when no engine is wired) and fails on the first
// feature that cannot load, so a half-mounted API never starts serving.
package loader
