// Package fingerprint accumulates evidence of browser fingerprinting.
//
// Instrumentation emits one Signal per suspicious API use. An Activity
// counts signals per technique and turns counts into a Detection using
// per-technique thresholds. Canvas signals must come from a canvas larger
// than 16x16 pixels, and an optional pixel sample feeds an entropy
// estimate that can corroborate canvas fingerprinting on its own.
package fingerprint
