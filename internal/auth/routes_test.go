package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/task-manager/internal/auth"
)

func TestRouteTableClassify(t *testing.T) {
	t.Parallel()

	table := auth.NewRouteTable()

	cases := map[string]auth.RouteClass{
		"/login":             auth.RoutePublic,
		"/register":          auth.RoutePublic,
		"/api/auth/login":    auth.RoutePublic,
		"/api/auth/register": auth.RoutePublic,
		"/health/live":       auth.RoutePublic,
		"/health/ready":      auth.RoutePublic,
		"/api/auth/logout":   auth.RouteProtectedAPI,
		"/api/auth/me":       auth.RouteProtectedAPI,
		"/api/tasks":         auth.RouteProtectedAPI,
		"/api/tasks/123":     auth.RouteProtectedAPI,
		"/":                  auth.RouteProtectedPage,
		"/dashboard":         auth.RouteProtectedPage,
		"/settings":          auth.RouteProtectedPage,
	}

	for path, want := range cases {
		assert.Equal(t, want, table.Classify(path), "path %s", path)
	}
}

func TestRouteTableClassifyDeterministic(t *testing.T) {
	t.Parallel()

	table := auth.NewRouteTable()
	for _, path := range []string{"/login", "/api/tasks", "/dashboard"} {
		first := table.Classify(path)
		for i := 0; i < 100; i++ {
			assert.Equal(t, first, table.Classify(path))
		}
	}
}

func TestRouteClassString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "public", auth.RoutePublic.String())
	assert.Equal(t, "protected-page", auth.RouteProtectedPage.String())
	assert.Equal(t, "protected-api", auth.RouteProtectedAPI.String())
}
