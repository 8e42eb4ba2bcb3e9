// Package devserver implements the ledgerdash development server.
//
// The server plays the role a bundler's dev server plays for a desktop
// webview shell: it listens on a fixed port (failing loudly if the port is
// taken, unless strict port is disabled), serves built assets from the
// static directory and answers every other GET with the application shell.
// The shell carries the route match for the requested path, the whitelisted
// client environment and, in development, the live reload client.
//
// # Routes
//
//	GET /_ledgerdash/reload    live reload WebSocket
//	GET /_ledgerdash/env.json  whitelisted client environment
//	GET /_ledgerdash/routes    the route table
//	GET /metrics               Prometheus metrics
//	GET /*                     static file, or the shell (200 on a match,
//	                           404 with a null match otherwise)
//
// # Live Reload
//
// A polling watcher observes the static directory and the .env files.
// Stylesheet changes reload stylesheets in place, .env changes recollect
// the client environment, anything else reloads connected pages.
package devserver
