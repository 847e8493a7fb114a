package server

import "github.com/labstack/echo/v4"

// RouteRegistrar is implemented by every handler.
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo)
}

func RegisterRoutes(e *echo.Echo, routes ...RouteRegistrar) {
	for _, r := range routes {
		r.RegisterRoutes(e)
	}
}
