// Package health provides liveness and readiness HTTP handlers.
//
// Liveness always answers OK. Readiness runs the configured checks
// concurrently under a shared timeout and answers 503 when any fails:
//
//	mux.Get("/health/live", health.LivenessHandler())
//	mux.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"db":    db.Healthcheck(pool),
//		"redis": redis.Healthcheck(client),
//	}, health.WithTimeout(2*time.Second)))
//
// Both handlers answer plain text by default and JSON for ?format=json or
// an Accept header containing application/json.
package health
