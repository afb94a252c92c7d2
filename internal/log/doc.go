// Package log provides an slog handler that keeps visitor identifiers out
// of log output.
//
// SecureHandler masks:
//   - attributes keyed like credentials or cookies (Cookie, Set-Cookie,
//     Authorization, session, token)
//   - values that look like secrets (JWTs, bearer tokens, long opaque keys)
//     or raw Set-Cookie headers
//   - the values of tracking query parameters (utm_*, gclid, fbclid,
//     msclkid, _ga, mc_eid) inside URL strings
//
// Masking applies in verbose mode too, so logs can be shared.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
