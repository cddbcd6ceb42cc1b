// Package routes declares route groups and registers them on a ServeMux.
package routes

import (
	"fmt"
	"net/http"
)

// Guard wraps a handler with an access check.
type Guard func(http.HandlerFunc) http.HandlerFunc

// Group organizes routes under a common prefix with shared tags.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
// Protected routes are wrapped with guard; registering a protected route
// with a nil guard panics rather than exposing it unguarded.
func Register(mux *http.ServeMux, guard Guard, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, guard, "", group)
	}
}

// Walk calls fn for every route in the groups with its full path.
func Walk(groups []Group, fn func(path string, group Group, route Route)) {
	for _, group := range groups {
		walkGroup("", group, fn)
	}
}

func registerGroup(mux *http.ServeMux, guard Guard, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		pattern := route.Method + " " + fullPrefix + route.Pattern
		handler := route.Handler
		if route.Protected {
			if guard == nil {
				panic(fmt.Sprintf("protected route %s registered without a guard", pattern))
			}
			handler = guard(handler)
		}
		mux.HandleFunc(pattern, handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, guard, fullPrefix, child)
	}
}

func walkGroup(parentPrefix string, group Group, fn func(string, Group, Route)) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		fn(fullPrefix+route.Pattern, group, route)
	}
	for _, child := range group.Children {
		walkGroup(fullPrefix, child, fn)
	}
}
