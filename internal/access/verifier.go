package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/mise-backend/pkg/auth"
	"github.com/angelmondragon/mise-backend/pkg/auth/session"
	"github.com/angelmondragon/mise-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
)

// IdentityVerifier resolves a bearer credential to a caller id.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// JWTVerifier checks HS256 access tokens and, when sessions is set, that the
// token's jti has not been revoked.
type JWTVerifier struct {
	cfg      config.JWTConfig
	sessions session.AccessSessionChecker
}

// NewJWTVerifier builds a verifier. sessions may be nil to skip the revocation check.
func NewJWTVerifier(cfg config.JWTConfig, sessions session.AccessSessionChecker) (*JWTVerifier, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTVerifier{cfg: cfg, sessions: sessions}, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := auth.ParseAccessToken(v.cfg, token)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if v.sessions == nil {
		return claims.UserID, nil
	}

	live, err := v.sessions.HasSession(ctx, claims.ID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session check failed")
	}
	if !live {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked")
	}
	return claims.UserID, nil
}
