package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The dev server port must be between 1 and 65535.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid environment prefix",
		Detail:   "An empty prefix would expose every environment variable to the client.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid mode",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Invalid static directory",
	},

	// ============================================
	// Routing Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryRouting,
		Message:  "Invalid route table",
	},
	"E201": {
		Category: CategoryRouting,
		Message:  "Unknown route",
	},
	"E202": {
		Category: CategoryRouting,
		Message:  "Missing route parameter",
	},
	"E203": {
		Category: CategoryRouting,
		Message:  "Invalid route parameter",
	},
	"E204": {
		Category: CategoryRouting,
		Message:  "No route matches path",
	},

	// ============================================
	// Dev Server Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryServer,
		Message:  "Dev server failed to start",
	},
	"E301": {
		Category: CategoryServer,
		Message:  "Port already in use",
	},
	"E302": {
		Category: CategoryServer,
		Message:  "No free port found",
	},
	"E303": {
		Category: CategoryServer,
		Message:  "Invalid .env file",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
