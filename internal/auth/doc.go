// Package auth authenticates API callers and authorizes admin-only routes.
//
// Two credentials are accepted:
//   - Bearer tokens (Authorization: Bearer <token>) for API clients. Only the SHA-256
//     of a token is stored.
//   - Cookie sessions (scs, stored in the sessions table) created by
//     POST /api/auth/login. Mutations on a session must echo the token from
//     GET /api/auth/csrf in the X-CSRF-Token header.
//
// # Configuration
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>  # CSRF signing key, generated if empty
//	AUTH_SESSION_LIFETIME=24h           # Session duration
//	AUTH_TOKEN_EXPIRY=720h              # Bearer token expiry
//	AUTH_BCRYPT_COST=12                 # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true            # HTTPS-only cookies
//	AUTH_MAX_LOGIN_ATTEMPTS=5           # Failures before lockout
//	AUTH_LOCKOUT_DURATION=30m           # Lockout length
//
// # Usage
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	mw := auth.NewMiddleware(authService, sessionManager)
//	api := router.Group("/api", mw.Handler())
//	admin := api.Group("/admin", auth.RequireAdmin())
//
// Handlers read the caller with auth.GetUserID(c) and auth.GetUserRole(c).
package auth
