package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civitas-ai/citizen-assist-platform/pkg/logging"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// Roles accepted on municipal back-office tokens. "admin" manages everything;
// "staff" covers department operators updating cases and appointments.
var adminRoles = map[string]bool{
	"admin": true,
	"staff": true,
}

// AdminClaims is the token payload issued to municipal back-office users.
type AdminClaims struct {
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// AdminJWT enforces an HMAC-signed JWT carrying a back-office role on admin
// endpoints. Rejections use the API's JSON error shape.
func AdminJWT(secret string, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				authError(w, "acceso administrativo deshabilitado", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				authError(w, "encabezado de autorización requerido", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("admin token rejected", "path", r.URL.Path, "error", err)
				authError(w, "token inválido", http.StatusUnauthorized)
				return
			}
			if !adminRoles[claims.Role] {
				logger.Warn("admin token lacks back-office role",
					"path", r.URL.Path,
					"subject", claims.Subject,
					"role", claims.Role,
				)
				authError(w, "rol sin permisos administrativos", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, *claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminClaimsFromContext returns the authenticated back-office claims.
func AdminClaimsFromContext(ctx context.Context) (AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(AdminClaims)
	return claims, ok
}

func authError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
