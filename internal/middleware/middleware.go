package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

// WorkerKey is the context key under which the resolved worker id is stored.
type WorkerKey struct{}

// Identity extracts the worker id resolved by the operator-facing layer from
// a signed bearer token. This is identity transport, not authentication:
// whoever issued the token has already established who the human is.
func Identity(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				log.Printf("Middleware: missing or invalid Authorization header")
				utils.WriteJSONError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Printf("Middleware: invalid token: %v", err)
				utils.WriteJSONError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				utils.WriteJSONError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			exp, ok := claims["exp"].(float64)
			if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
				utils.WriteJSONError(w, http.StatusUnauthorized, "Token expired or invalid")
				return
			}

			workerIDFloat, ok := claims["worker_id"].(float64)
			if !ok {
				log.Printf("Middleware: worker_id not found in claims")
				utils.WriteJSONError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), WorkerKey{}, int64(workerIDFloat))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetWorkerID(r *http.Request) (int64, bool) {
	workerID, ok := r.Context().Value(WorkerKey{}).(int64)
	return workerID, ok
}

// AdminOnly restricts a route group to the configured admin worker ids.
func AdminOnly(adminIDs []int64) func(http.Handler) http.Handler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workerID, ok := GetWorkerID(r)
			if !ok {
				utils.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !admins[workerID] {
				log.Printf("Middleware: worker %d is not an admin", workerID)
				utils.WriteJSONError(w, http.StatusForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
