package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/mise-backend/api/middleware"
	"github.com/angelmondragon/mise-backend/api/responses"
	"github.com/angelmondragon/mise-backend/api/validators"
	"github.com/angelmondragon/mise-backend/internal/forecast"
	"github.com/angelmondragon/mise-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
	"github.com/angelmondragon/mise-backend/pkg/logger"
)

const maxFieldRunes = 128

// TenantAuthorizer is satisfied by access.Gate.
type TenantAuthorizer interface {
	Authorize(ctx context.Context, bearerToken, tenantID string) (bool, error)
}

type insightRequest struct {
	TenantID    string `json:"tenantId" validate:"required"`
	RequestType string `json:"requestType" validate:"required"`
}

func (r *insightRequest) Sanitize() {
	r.TenantID = validators.SanitizeString(r.TenantID, maxFieldRunes)
	r.RequestType = validators.SanitizeString(r.RequestType, maxFieldRunes)
}

type baselineRequest struct {
	TenantID string `json:"tenantId" validate:"required"`
}

func (r *baselineRequest) Sanitize() {
	r.TenantID = validators.SanitizeString(r.TenantID, maxFieldRunes)
}

// InventoryInsights streams completion text for an authorized tenant as
// text/plain. Failures before the first byte get a JSON error; later
// failures abort the connection so the caller sees a truncated body. A clean
// completion ends with the baseline trailer built from the same snapshot.
func InventoryInsights(gate TenantAuthorizer, svc forecast.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req insightRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tenantID, ok := authorizeTenant(w, r, gate, logg, req.TenantID)
		if !ok {
			return
		}
		if logg != nil {
			ctx = logg.WithTenantID(ctx, tenantID.String())
		}

		insight, err := svc.StartInsight(ctx, tenantID, enums.InsightRequestType(req.RequestType))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		trailer, err := forecast.EncodeBaseline(insight.Baseline)
		if err != nil {
			insight.Stream.Close()
			responses.WriteError(ctx, logg, w, err)
			return
		}

		stream := responses.NewTextStream(w, forecast.BaselineTrailer)
		if err := insight.Stream.Pipe(stream.Write); err != nil {
			if !stream.Started() {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			panic(http.ErrAbortHandler)
		}
		stream.SetTrailer(forecast.BaselineTrailer, trailer)
		stream.Close()
	}
}

// InventoryBaseline returns the deterministic suggestion list without
// contacting the completion service.
func InventoryBaseline(gate TenantAuthorizer, svc forecast.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req baselineRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tenantID, ok := authorizeTenant(w, r, gate, logg, req.TenantID)
		if !ok {
			return
		}

		suggestions, err := svc.Baseline(ctx, tenantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, suggestions)
	}
}

func authorizeTenant(w http.ResponseWriter, r *http.Request, gate TenantAuthorizer, logg *logger.Logger, rawTenantID string) (uuid.UUID, bool) {
	ctx := r.Context()
	allowed, err := gate.Authorize(ctx, middleware.BearerTokenFromContext(ctx), rawTenantID)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return uuid.Nil, false
	}
	tenantID, parseErr := uuid.Parse(rawTenantID)
	if !allowed || parseErr != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant access denied"))
		return uuid.Nil, false
	}
	return tenantID, true
}
