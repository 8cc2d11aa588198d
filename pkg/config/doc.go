// Package config loads and validates the Skybridge configuration file.
//
// The configuration is an explicit typed structure with a fixed, enumerated
// set of recognized options; unknown keys are rejected at load time and
// there is no attribute-or-key fallback lookup. Precedence is simple and
// documented: a field set explicitly in the file wins over its default.
package config
