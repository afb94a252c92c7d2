// Package main provides the entry point for the privacygrade CLI.
//
// privacygrade grades how much a web page tracks its visitors. It scores
// third-party trackers, cookies, fingerprinting and permission requests
// and turns the result into a letter grade from A+ to F.
//
// Usage:
//
//	privacygrade grade capture.jsonl
//	privacygrade browse https://example.com
//	privacygrade serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
