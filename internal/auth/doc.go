// Package auth resolves who is calling.
//
// Three modes are selected with AUTH_MODE:
//   - "none": single-user; every request acts as AUTH_DEFAULT_USER_ID (default "local")
//   - "local": local accounts with session cookies for browsers and Bearer tokens for API clients
//   - "proxy": an upstream identity-aware proxy authenticates and passes the user in AUTH_PROXY_HEADER
//
// # Configuration
//
// For local mode:
//
//	AUTH_SESSION_SECRET=<hex-32-bytes>     # CSRF signing key, generated if empty
//	AUTH_SESSION_LIFETIME=24h
//	AUTH_TOKEN_EXPIRY=720h
//	AUTH_BCRYPT_COST=12
//	AUTH_SECURE_COOKIES=true
//
// # Usage
//
//	svc := auth.NewService(users.NewRepository(db), cfg.Auth)
//	mw := auth.NewMiddleware(svc, sessions, cfg.Auth)
//	router.Use(mw.Handler())
//
// Handlers read the resolved identity with CallerID and pass it on to the
// repositories explicitly:
//
//	userID, ok := auth.CallerID(c)
package auth
