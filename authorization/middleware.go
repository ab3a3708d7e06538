package authorization

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	hri "github.com/Alvearie/hri-mgmt-api-sub000"
	"github.com/Alvearie/hri-mgmt-api-sub000/kit/platform/errors"
	kithttp "github.com/Alvearie/hri-mgmt-api-sub000/kit/transport/http"
)

// Middleware authenticates requests and stores the token's claims on the
// request context. The missing-header, malformed-header and invalid-token
// cases each produce their own message; handlers below this layer perform
// tenant and role checks against the stored claims.
func Middleware(validator hri.TokenValidator, logger *zap.Logger) kithttp.Middleware {
	errHandler := kithttp.NewErrorHandler(logger)
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" {
				errHandler.HandleHTTPError(ctx, &errors.Error{
					Code: errors.EUnauthorized,
					Msg:  "missing required Authorization header with Bearer token",
				}, w)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				errHandler.HandleHTTPError(ctx, &errors.Error{
					Code: errors.EUnauthorized,
					Msg:  "Authorization header must carry a Bearer token",
				}, w)
				return
			}

			claims, err := validator.Validate(ctx, parts[1])
			if err != nil {
				errHandler.HandleHTTPError(ctx, err, w)
				return
			}

			next.ServeHTTP(w, r.WithContext(hri.WithClaims(ctx, claims)))
		}
		return http.HandlerFunc(fn)
	}
}
