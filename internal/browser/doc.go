// Package browser grades live pages in headless Chrome.
//
// An Observer injects an instrumentation script before any page script
// runs. The script reports fingerprinting API use, permission requests
// and a forms summary through a runtime binding. Network events supply
// requests and Set-Cookie headers. Everything is fed into a
// monitor.Monitor as ordinary events, so the engine never knows how the
// signals were produced.
package browser
