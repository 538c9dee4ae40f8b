package idp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-adoption-platform/internal/platform/httpclient"
	"pet-adoption-platform/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("idp verifier not configured")
	ErrUnauthorized  = errors.New("idp unauthorized")
	ErrUpstream      = errors.New("idp upstream error")
)

// Config del verifier contra el identity provider externo.
// BaseURL y APIKey vienen de env vars (ver platform/config).
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: header de la API key. Default "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Verifier implementa auth.AuthVerifier contra el IdP externo.
// El registro de usuarios, login y reset de password viven allá;
// acá solo se canjea el token por claims.
type Verifier struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewVerifier(cfg Config) (*Verifier, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, ErrNotConfigured
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}

	return &Verifier{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.http == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}

	err := v.http.DoJSON(ctx, http.MethodPost, "/v1/sessions/verify",
		map[string]string{
			v.apiKeyHeader:  v.apiKey,
			"Authorization": "Bearer " + token,
		},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return auth.Claims{}, ErrUnauthorized
			}
			return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("idp response missing user_id")
	}

	role := auth.Role(strings.TrimSpace(out.Role))
	if role != auth.RoleAdmin {
		// Cualquier rol desconocido cae al mínimo privilegio.
		role = auth.RoleAdopter
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Role:   role,
	}, nil
}
