// Package middleware provides net/http observability middleware for the
// ledgerdash dev server.
//
// # Prometheus Metrics
//
// HTTPMetrics counts requests by route pattern, method and status and
// observes their duration:
//   - ledgerdash_http_requests_total
//   - ledgerdash_http_request_duration_seconds
//   - ledgerdash_http_requests_in_flight
//
//	m := middleware.NewHTTPMetrics(middleware.WithRegistry(reg))
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Route labels come from the chi route pattern, never from the raw path,
// so label cardinality stays bounded.
//
// # OpenTelemetry
//
// OpenTelemetry starts a server span for every request and stores it in the
// request context, so handlers can add child spans:
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("ledgerdash"),
//	    middleware.WithFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/metrics"
//	    }),
//	))
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before starting the server.
package middleware
