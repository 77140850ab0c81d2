// SPDX-License-Identifier: EPL-2.0

// Package config loads the service configuration from YAML with
// environment overrides for the service URL and token.
package config
