// Package errors provides structured, actionable error messages for the
// ledgerdash command line and dev server.
//
// Every error has a code registered in this package, a category, a short
// message and, where useful, a detail paragraph and a hint on how to fix it.
// Configuration errors can point at the offending line of ledgerdash.json.
//
// # Error Codes
//
//   - E100-E199: configuration (ledgerdash.json, environment, flags)
//   - E200-E299: routing (route table, path building, resolution)
//   - E300-E399: dev server (listening, watching, live reload, .env files)
//
// # Usage
//
//	err := errors.New("E301").
//	    WithDetail("port 1420 is held by another process").
//	    WithSuggestion("Stop the other process or set \"strictPort\": false")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E301: Port already in use
//	//
//	//   port 1420 is held by another process
//	//
//	//   Hint: Stop the other process or set "strictPort": false
package errors
