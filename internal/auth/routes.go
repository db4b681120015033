package auth

import "strings"

// RouteClass partitions request paths by the access they require.
type RouteClass int

const (
	// RoutePublic needs no identity.
	RoutePublic RouteClass = iota
	// RouteProtectedPage requires identity; failures redirect to login.
	RouteProtectedPage
	// RouteProtectedAPI requires identity; failures get a 401 body.
	RouteProtectedAPI
)

func (c RouteClass) String() string {
	switch c {
	case RoutePublic:
		return "public"
	case RouteProtectedPage:
		return "protected-page"
	case RouteProtectedAPI:
		return "protected-api"
	}
	return "unknown"
}

// Well-known paths the gate redirects between.
const (
	LoginPath     = "/login"
	RegisterPath  = "/register"
	DashboardPath = "/dashboard"
)

// RouteTable classifies paths against a fixed prefix table. The table is
// immutable after construction, so classification is deterministic and safe
// for concurrent use.
type RouteTable struct {
	publicPrefixes []string
	apiPrefix      string
}

// NewRouteTable builds the default partition: login/register surfaces and
// health probes are public, everything under /api/ is a protected API, the
// rest are protected pages.
func NewRouteTable() *RouteTable {
	return &RouteTable{
		publicPrefixes: []string{
			LoginPath,
			RegisterPath,
			"/api/auth/login",
			"/api/auth/register",
			"/health",
		},
		apiPrefix: "/api/",
	}
}

// Classify maps a request path to its route class.
func (t *RouteTable) Classify(path string) RouteClass {
	for _, prefix := range t.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RoutePublic
		}
	}
	if strings.HasPrefix(path, t.apiPrefix) {
		return RouteProtectedAPI
	}
	return RouteProtectedPage
}
