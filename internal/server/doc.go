// Package server exposes a Monitor over HTTP.
//
// Browser-side observers post events to /api/events, user interfaces
// query scores and reports per tab, and /api/ws streams every repainted
// grade to connected WebSocket clients.
package server
