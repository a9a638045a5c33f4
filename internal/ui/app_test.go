package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardRoute(t *testing.T) {
	cases := []struct {
		name          string
		route         string
		token         string
		authenticated bool
		want          string
	}{
		{"guest on protected screen lands on login", RouteTasks, "", false, RouteLogin},
		{"guest on login stays", RouteLogin, "", false, RouteLogin},
		{"authenticated on protected screen passes", RouteTasks, "tok", true, RouteTasks},
		{"authenticated on login lands on dashboard", RouteLogin, "tok", true, RouteDashboard},
		{"flag set without token is not admitted", RouteTasks, "", true, RouteLogin},
		{"flag set without token stays on login", RouteLogin, "", true, RouteLogin},
		{"token without flag is not admitted", RouteTasks, "tok", false, RouteLogin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GuardRoute(tc.route, tc.token, tc.authenticated))
		})
	}
}
