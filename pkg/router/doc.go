// Package router implements the route table of the dashboard client.
//
// The router provides:
//   - An immutable, ordered table of routes built once at startup
//   - Path resolution to a view identifier plus captured parameters
//   - Path building from a route name and parameters
//   - A navigator that drives an external history implementation
//
// # Patterns
//
// A route path is a sequence of "/"-separated segments. A segment starting
// with ":" captures the corresponding input segment under that name, with an
// optional type constraint:
//
//	/                 → literal root
//	/accounts         → literal
//	/account/:id      → captures id (any string)
//	/account/:id:int  → captures id, only when it parses as an integer
//
// Patterns are parsed into tagged segments when the table is built, so
// resolution never re-parses a pattern.
//
// # Case
//
// Literal segments match case-insensitively, so /Accounts resolves like
// /accounts. Captured values keep the case of the input.
//
// # Precedence
//
// Exact literal paths always win over parameterized ones, so /accounts is never
// shadowed by /account/:id or /:section. Among parameterized patterns with the
// same segment count the first registered match wins.
//
// # Usage
//
//	table, err := router.New(
//	    router.Route{Path: "/", Name: "Dashboard", View: "Dashboard"},
//	    router.Route{Path: "/account/:id", Name: "AccountDetail", View: "AccountDetail", PropsFromParams: true},
//	)
//	if err != nil {
//	    return err // *ConfigurationError
//	}
//
//	match, ok := table.Resolve("/account/42")
//	if ok {
//	    // match.Name == "AccountDetail", match.Params["id"] == "42"
//	}
//
//	path, err := table.BuildPath("AccountDetail", map[string]string{"id": "42"})
//	// path == "/account/42"
package router
