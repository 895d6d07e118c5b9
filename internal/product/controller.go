package product

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mytrade/internal/auth"
	"mytrade/internal/commons"
	apperrors "mytrade/internal/errors"
)

const maxProductIDs = 100

type Controller struct {
	useCase SearchUseCase
	expirer SessionExpirer
	logger  *zap.Logger
}

func NewController(useCase SearchUseCase, expirer SessionExpirer, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		expirer: expirer,
		logger:  logger,
	}
}

func (c *Controller) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		commons.WriteError(w, traceID, apperrors.NewUnauthorizedError("not signed in"), logger)
		return
	}

	q := r.URL.Query()
	req := SearchProductsRequest{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	if raw, present := q["ids"]; present {
		req.ProductIDs = strings.Split(strings.Join(raw, ","), ",")
	}

	if err := c.validateSearchRequest(&req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.SearchProducts(r.Context(), principal.Token, req)
	if err != nil {
		if _, ok := apperrors.IsUnauthorizedError(err); ok {
			c.expirer.ExpireSession(r.Context())
			commons.WriteSessionExpired(w, traceID, logger)
			return
		}
		logger.Warn("search products failed", zap.Error(err))
		commons.WriteError(w, traceID, err, logger)
		return
	}

	resp.TraceID = traceID
	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

// validateSearchRequest trims the ids in place and drops duplicates.
func (c *Controller) validateSearchRequest(req *SearchProductsRequest) error {
	seen := make(map[string]struct{}, len(req.ProductIDs))
	ids := make([]string, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			msg := "each id must be non-empty"
			return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
				Field:   "ids",
				Message: msg,
			})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) > maxProductIDs {
		msg := "ids exceeds maximum of " + strconv.Itoa(maxProductIDs)
		return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "ids",
			Message: msg,
		})
	}
	req.ProductIDs = ids

	return nil
}
