// Package providers contains the provider registry and the concrete
// backends that implement the pkg/cloud capability interfaces.
//
// Backends self-register a Factory in their package init; callers import a
// backend package for its side effect and construct providers by name:
//
//	import _ "github.com/skybridge/skybridge/pkg/providers/local"
//
//	provider, err := providers.New(ctx, "local", cfg)
package providers
