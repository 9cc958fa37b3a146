package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/authgate/apiserver/types"
)

type contextKey string

const contextAccountKey contextKey = "account"

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

func contextWithAccount(ctx context.Context, account types.Account) context.Context {
	return context.WithValue(ctx, contextAccountKey, account)
}

func accountFromContext(ctx context.Context) (types.Account, error) {
	account, ok := ctx.Value(contextAccountKey).(types.Account)
	if !ok {
		return types.Account{}, errors.New("missing account")
	}
	return account, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

func validEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func validName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 2 && n <= 50
}

const minPasswordLength = 6
