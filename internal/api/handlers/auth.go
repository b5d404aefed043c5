package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
)

// AdminCodeHeader carries the admin code on settings updates.
const AdminCodeHeader = "X-Admin-Code"

type codeRequest struct {
	Code string `json:"code" validate:"required"`
}

func codeMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// CheckCode handles POST /api/auth/{access,admin}. It compares the submitted
// code with want and answers 204 on a match and 401 otherwise.
func CheckCode(scope, want string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body codeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if msg := validateStruct(body); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		if !codeMatches(body.Code, want) {
			slog.Warn("wrong kiosk code", "scope", scope)
			writeError(w, http.StatusUnauthorized, "Wrong code")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RequireAdmin rejects requests whose X-Admin-Code header does not match
// adminCode.
func RequireAdmin(adminCode string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !codeMatches(r.Header.Get(AdminCodeHeader), adminCode) {
				writeError(w, http.StatusUnauthorized, "Admin code required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
