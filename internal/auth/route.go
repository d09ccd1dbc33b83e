package auth

import "strings"

const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathForgotPassword = "/forgot-password"
	PathChangePassword = "/change-password"
	PathDashboard      = "/dashboard"
	PathCheck          = "/check"
	PathAdminRedirect  = "/admin-redirect"
)

// Decision tells a page whether to render or where to go instead.
type Decision struct {
	Path     string `json:"path"`
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

func allow(path string) Decision { return Decision{Path: path, Allowed: true} }

func redirect(path, to string) Decision { return Decision{Path: path, Redirect: to} }

// ResolveRoute decides navigation for a page path given the current session
// (nil when signed out). It is the only place page guards are decided.
func ResolveRoute(path string, s *Session) Decision {
	path = normalizePath(path)

	switch {
	case path == PathHome || path == PathAdminRedirect:
		if s == nil {
			return redirect(path, PathLogin)
		}
		return redirect(path, landing(s))

	case path == PathLogin || path == PathRegister || path == PathForgotPassword:
		if s != nil {
			return redirect(path, landing(s))
		}
		return allow(path)

	case path == PathChangePassword:
		if s == nil {
			return redirect(path, PathLogin)
		}
		return allow(path)

	case isProtected(path):
		if s == nil {
			return redirect(path, PathLogin)
		}
		if s.PasswordResetRequired {
			return redirect(path, PathChangePassword)
		}
		return allow(path)
	}

	// /check and unknown pages (not-found) render as they are
	return allow(path)
}

// landing is where a freshly signed-in user goes.
func landing(s *Session) string {
	if s.PasswordResetRequired {
		return PathChangePassword
	}
	return PathDashboard
}

func isProtected(path string) bool {
	return path == PathDashboard || strings.HasPrefix(path, PathDashboard+"/")
}

func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathHome
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = PathHome
		}
	}
	return path
}
