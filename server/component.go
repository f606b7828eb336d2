package server

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/podscribe/component"
)

const componentName = "http-server"

var _ component.Component = (*ServerComponent)(nil)

// ServerComponent wraps Server to implement component.Component.
type ServerComponent struct {
	server *Server
}

// NewComponent returns a component.Component backed by s.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

// Name returns the component name used for registration.
func (sc *ServerComponent) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (sc *ServerComponent) Start(ctx context.Context) error {
	return sc.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (sc *ServerComponent) Stop(ctx context.Context) error {
	return sc.server.Stop(ctx)
}

// Health reports healthy once the listener is bound.
func (sc *ServerComponent) Health(context.Context) component.Health {
	sc.server.mu.Lock()
	bound := sc.server.listener != nil
	sc.server.mu.Unlock()
	if !bound {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "listener not bound"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Route describes one registered route for the startup log.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// System routes are listed after the API routes.
var systemPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// Routes returns the registered Gin routes: API routes first by path, then
// system routes.
func (s *Server) Routes() []Route {
	ginRoutes := s.engine.Routes()
	slices.SortFunc(ginRoutes, func(a, b gin.RouteInfo) int {
		if as, bs := systemPaths[a.Path], systemPaths[b.Path]; as != bs {
			if as {
				return 1
			}
			return -1
		}
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return methodOrder(a.Method) - methodOrder(b.Method)
	})

	routes := make([]Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, Route{Method: r.Method, Path: r.Path, Handler: formatHandlerName(r.Handler)})
	}
	return routes
}

// formatHandlerName shortens Gin's handler names, e.g.
// "github.com/kbukum/podscribe/api.(*Handler).Submit-fm" becomes "Handler.Submit".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures such as "endpoint.Health.func1" keep their enclosing name.
	parts := strings.Split(name, ".")
	for len(parts) > 1 && strings.HasPrefix(parts[len(parts)-1], "func") {
		parts = parts[:len(parts)-1]
	}
	// Drop the package prefix.
	if len(parts) > 1 && strings.ToLower(parts[0]) == parts[0] {
		parts = parts[1:]
	}
	return strings.Join(parts, ".")
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
