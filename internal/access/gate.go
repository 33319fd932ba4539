package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
	"github.com/angelmondragon/mise-backend/pkg/logger"
)

// Gate decides whether a bearer credential may read a tenant's data.
type Gate struct {
	verifier IdentityVerifier
	records  RecordStore
	logg     *logger.Logger
}

func NewGate(verifier IdentityVerifier, records RecordStore, logg *logger.Logger) (*Gate, error) {
	if verifier == nil {
		return nil, fmt.Errorf("identity verifier required")
	}
	if records == nil {
		return nil, fmt.Errorf("record store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Gate{verifier: verifier, records: records, logg: logg}, nil
}

// Authorize returns an Unauthorized error when the credential is missing or
// fails verification. Otherwise it returns whether the caller may access
// tenantID. Lookup faults deny; they are logged, never returned.
func (g *Gate) Authorize(ctx context.Context, bearerToken, tenantID string) (bool, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token")
	}

	callerID, err := g.verifier.Verify(ctx, token)
	if err != nil {
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token verification failed")
		}
		return false, err
	}

	ctx = g.logg.WithCallerID(ctx, callerID.String())
	ctx = g.logg.WithTenantID(ctx, tenantID)

	tenant, err := uuid.Parse(strings.TrimSpace(tenantID))
	if err != nil {
		g.logg.Warn(ctx, "access.denied.malformed_tenant")
		return false, nil
	}

	record, err := g.lookup(ctx, callerID)
	if err != nil {
		g.logg.Error(ctx, "access.lookup_failed", err)
		return false, nil
	}
	if record == nil {
		g.logg.Warn(ctx, "access.denied.no_record")
		return false, nil
	}
	if !record.Allows(tenant) {
		g.logg.Warn(ctx, "access.denied.not_member")
		return false, nil
	}
	return true, nil
}

func (g *Gate) lookup(ctx context.Context, callerID uuid.UUID) (record *TenantAccessRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = fmt.Errorf("panic during access lookup: %v", r)
		}
	}()
	return g.records.FindRecord(ctx, callerID)
}
