// Package component manages the lifecycle of long-lived service parts.
//
// Components are started in registration order and stopped in reverse.
// Each reports its health for the /health endpoint.
package component
