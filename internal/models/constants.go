// Package models contains data types and constants for the campus marketplace chat API.
package models

import "time"

// Endpoints for the storefront backend
const (
	DefaultBaseURL  = "https://campusmart.app"
	ChatPath        = "/api/chat"
	DefaultEndpoint = DefaultBaseURL + ChatPath
)

// SessionCookieName is the cookie the storefront issues on sign-in
const SessionCookieName = "campusmart-session"

// Tool names the assistant can call
const (
	ToolSearchMarketplace = "search_marketplace"
)

// Timeouts used when the config does not override them
const (
	DefaultRequestTimeout = 120 * time.Second
	DefaultIdleTimeout    = 60 * time.Second
)

// DefaultHeaders returns the default headers for chat requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":    "application/json",
		"Accept":          "text/plain, text/event-stream, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
		"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	}
}
