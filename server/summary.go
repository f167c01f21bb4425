package server

import (
	"fmt"
	"strings"

	"github.com/nyayagpt/nyaya/logger"
)

// TrackRoutes adds every registered Gin route and the server itself to reg.
// Call it after all routes are registered.
func (s *Server) TrackRoutes(reg *logger.ComponentRegistry) {
	for _, r := range s.engine.Routes() {
		reg.RegisterHandler(r.Method, fmt.Sprintf("%s (%s)", r.Path, formatHandlerName(r.Handler)))
	}
	reg.RegisterInfrastructure("HTTP Server", "server", "active", s.httpServer.Addr)
}

// formatHandlerName extracts a short handler name from Gin's full handler
// path, e.g. "github.com/x/y/endpoint.(*Legal).Analyze-fm" becomes
// "Legal.Analyze".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// closures: "endpoint.Health.func1" -> "health"
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 && parts[0] == strings.ToLower(parts[0]) && len(parts[1]) > 0 {
		name = parts[1]
	}

	return name
}
