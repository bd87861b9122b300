package http

import (
	"github.com/mrlokans/lending/internal/audit"
	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/reports"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database Pinger
	Borrow   *borrow.Service
	Books    BookResolver
	Reports  *reports.Service
	Audit    *audit.Service

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthController *auth.AuthController
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue (optional)
	TaskQueue TaskQueue

	// Application info
	Version string
}
