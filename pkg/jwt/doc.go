// Package jwt issues and verifies the HS256 bearer tokens used between the
// notifications hub and its clients. It wraps github.com/golang-jwt/jwt/v5.
//
// Claims embeds the registered claims; Subject carries the user id.
//
//	svc, err := jwt.NewFromString(cfg.JWTSecret, jwt.WithTTL(12*time.Hour))
//	if err != nil {
//	    return err
//	}
//	token, err := svc.Issue("user-42", "admin")
//
//	claims, err := svc.Parse(token)
//	if errors.Is(err, jwt.ErrExpiredToken) {
//	    // ask the user to log in again
//	}
//
// Middleware extracts a bearer token, verifies it and stores the claims in
// the request context; handlers read them back with GetClaims or UserID:
//
//	r.Use(jwt.Middleware(svc))
//	userID, _ := jwt.UserID(r.Context())
//
// All failures are sentinel values comparable with errors.Is.
package jwt
