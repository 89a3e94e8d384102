package auth

import (
	"net/http"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/pet-poison-map/internal/api/middleware"
	"github.com/povarna/pet-poison-map/internal/models"
)

const userAttribute = "auth.user"

// BearerFilter rejects requests without a valid app token and stores the
// user on the request for handlers.
func BearerFilter(tokens *TokenIssuer) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		header := req.HeaderParameter("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			middleware.HandleError(resp, ErrInvalidToken, http.StatusUnauthorized)
			return
		}

		user, err := tokens.ParseToken(strings.TrimSpace(token))
		if err != nil {
			middleware.HandleError(resp, ErrInvalidToken, http.StatusUnauthorized)
			return
		}

		req.SetAttribute(userAttribute, &user)
		chain.ProcessFilter(req, resp)
	}
}

func UserFromRequest(req *restful.Request) (*models.User, bool) {
	user, ok := req.Attribute(userAttribute).(*models.User)
	return user, ok && user != nil
}
