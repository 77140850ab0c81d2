// SPDX-License-Identifier: EPL-2.0

// Package server is the HTTP front end: it accepts audio uploads,
// normalizes them and relays them to the translation session.
package server
