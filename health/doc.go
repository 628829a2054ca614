// Package health exposes the resilience engine's reachability probe through
// a generic health-check framework.
//
// A Checker reports the health of one component; the Aggregator combines
// checkers into a composite status and the HTTP handlers expose it on the
// usual probe endpoints.
//
// # Usage
//
//	agg := health.NewAggregator()
//	agg.Register("remote-api", health.NewEngineChecker("remote-api", eng))
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
package health
