package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type Claims struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

type contextKey string

const UserContextKey contextKey = "user"

// Config controls how bearer tokens are checked
type Config struct {
	// SkipAuth lets every request through as a dev user
	SkipAuth bool
	// VerifySignature checks tokens against the issuer's JWKS
	VerifySignature bool
	// Issuer is the OIDC issuer URL the JWKS is fetched from
	Issuer string
}

// LoadConfig reads SKIP_AUTH, VERIFY_JWT_SIGNATURE, ENV and OIDC_ISSUER.
// Signatures are always verified outside development.
func LoadConfig() Config {
	cfg := Config{
		SkipAuth:        os.Getenv("SKIP_AUTH") == "true",
		VerifySignature: os.Getenv("VERIFY_JWT_SIGNATURE") == "true",
		Issuer:          os.Getenv("OIDC_ISSUER"),
	}
	if env := os.Getenv("ENV"); env != "development" && env != "" {
		cfg.VerifySignature = true
	}
	return cfg
}

var validMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Authenticator validates JWT tokens from an OIDC provider
type Authenticator struct {
	cfg    Config
	logger zerolog.Logger

	mu      sync.Mutex
	keyfunc jwt.Keyfunc
}

// New creates an Authenticator. The JWKS is fetched on first use.
func New(cfg Config, logger zerolog.Logger) *Authenticator {
	return &Authenticator{cfg: cfg, logger: logger.With().Str("component", "auth").Logger()}
}

// NewWithKeyfunc creates an Authenticator that verifies with the given keys
func NewWithKeyfunc(cfg Config, kf jwt.Keyfunc, logger zerolog.Logger) *Authenticator {
	a := New(cfg, logger)
	a.keyfunc = kf
	return a
}

// getKeyfunc returns the JWT keyfunc, fetching the JWKS on first call
func (a *Authenticator) getKeyfunc() (jwt.Keyfunc, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.keyfunc != nil {
		return a.keyfunc, nil
	}
	if a.cfg.Issuer == "" {
		return nil, fmt.Errorf("OIDC_ISSUER not configured for JWT verification")
	}

	// Keycloak layout
	jwksURL := strings.TrimSuffix(a.cfg.Issuer, "/") + "/protocol/openid-connect/certs"
	a.logger.Info().Str("url", jwksURL).Msg("fetching JWKS")

	k, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create keyfunc: %w", err)
	}

	a.keyfunc = k.Keyfunc
	return a.keyfunc, nil
}

// Middleware rejects requests without a valid bearer token
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.SkipAuth {
			ctx := context.WithValue(r.Context(), UserContextKey, &Claims{
				Email:  "dev@monti.local",
				Name:   "Dev User",
				Role:   "admin",
				Groups: []string{"developers"},
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			a.logger.Warn().Str("path", r.URL.Path).Msg("missing authorization token")
			http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.validateToken(tokenString)
		if err != nil {
			a.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
			http.Error(w, fmt.Sprintf("Unauthorized: %v", err), http.StatusUnauthorized)
			return
		}

		a.logger.Debug().Str("email", claims.Email).Str("role", claims.Role).Msg("user authenticated")

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken gets the token from the Authorization header, or from the
// token query parameter used by browser WebSocket clients
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}
	}

	return r.URL.Query().Get("token")
}

func (a *Authenticator) validateToken(tokenString string) (*Claims, error) {
	var (
		token *jwt.Token
		err   error
	)

	if a.cfg.VerifySignature {
		kf, kerr := a.getKeyfunc()
		if kerr != nil {
			return nil, kerr
		}
		token, err = jwt.Parse(tokenString, kf, jwt.WithValidMethods(validMethods))
		if err != nil {
			return nil, fmt.Errorf("token verification failed: %w", err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("invalid token")
		}
	} else {
		token, _, err = jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	claims := &Claims{
		Role:   extractRole(mapClaims),
		Groups: extractGroups(mapClaims),
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	} else if username, ok := mapClaims["preferred_username"].(string); ok {
		claims.Name = username
	}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}

	// verified tokens had exp checked by the parser
	if !a.cfg.VerifySignature {
		if exp, ok := mapClaims["exp"].(float64); ok {
			expTime := time.Unix(int64(exp), 0)
			claims.ExpiresAt = jwt.NewNumericDate(expTime)
			if expTime.Before(time.Now()) {
				return nil, fmt.Errorf("token expired")
			}
		}
	}

	return claims, nil
}

// extractRole reads the highest role from Keycloak realm roles or Cognito groups
func extractRole(mapClaims jwt.MapClaims) string {
	if realmAccess, ok := mapClaims["realm_access"].(map[string]interface{}); ok {
		if roles, ok := realmAccess["roles"].([]interface{}); ok {
			for _, priority := range []string{"admin", "supervisor", "agent", "viewer"} {
				for _, role := range roles {
					if roleStr, ok := role.(string); ok && roleStr == priority {
						return roleStr
					}
				}
			}
		}
	}

	if cognitoGroups, ok := mapClaims["cognito:groups"].([]interface{}); ok {
		for _, group := range cognitoGroups {
			groupStr, ok := group.(string)
			if !ok {
				continue
			}
			for _, role := range []string{"admin", "supervisor", "agent"} {
				if strings.Contains(groupStr, role) {
					return role
				}
			}
		}
	}

	return "viewer"
}

func extractGroups(mapClaims jwt.MapClaims) []string {
	var groups []string
	for _, key := range []string{"groups", "cognito:groups"} {
		values, ok := mapClaims[key].([]interface{})
		if !ok {
			continue
		}
		for _, v := range values {
			if s, ok := v.(string); ok {
				groups = append(groups, s)
			}
		}
	}
	return groups
}

// GetUserFromContext retrieves user claims from request context
func GetUserFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	return claims, ok
}
