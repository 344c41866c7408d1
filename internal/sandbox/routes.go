package sandbox

import (
	"github.com/birbparty/dandb-go/sdk"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all sandbox routes. Every DandB endpoint except
// the token endpoint requires an access token; user endpoints also
// require a user token.
func SetupRoutes(app *fiber.App, h *Handler) {
	access := h.requireAccessToken
	user := h.requireUserToken

	app.Post("/v1/oauth/token", h.Token)

	// Business data
	app.Get("/v1/business/search", access, h.Search)
	app.Get("/v1/business/search/international", access, h.InternationalSearch)
	app.Get("/v1/business/:duns/recommended-products", access, h.RecommendedProducts)
	app.Get("/v1/verified/:id", access, h.VerifiedProfile)
	app.Get("/v1/content/:page/:lang", access, h.Content)

	// User tokens
	app.Post("/v1/user/token", access, h.UserToken)
	app.Get("/v1/user/token", access, user, h.UserTokenStatus)
	app.Post("/v1/user/token/refresh", access, h.UserTokenRefresh)
	app.Get("/v1/user/token/status", access, user, h.UserUsingToken)

	// User accounts
	app.Get("/v1.1/user", access, user, h.UserDetails)
	app.Post("/v1/user/logout", access, user, h.UserLogout)
	app.Post("/v1/user/password/reset", access, h.PasswordReset)
	app.Post("/v1/user/password/change", access, user, h.PasswordChange)
	app.Post("/v1.1/user/register", access, h.UserRegister)
	app.Post("/v1/user/accept-tos", access, h.UserAcceptTOS)

	// Entitlements and email
	app.Get("/v1.1/user/entitlements", access, user, h.UserEntitlements)
	app.Post("/v1.1/user/entitlements", access, user, h.AddUserEntitlements)
	app.Post("/v1.1/user/entitlement", access, user, h.AddSingleEntitlement)
	app.Post("/v1.1/email", access, h.PostEmail)

	// OAuth2 authorization code flow
	app.Post("/v1/oauth2/token/authorization_code", access, h.AuthCodeToken)
	app.Post("/v1/oauth2/authorize/code", access, user, h.AuthorizeCode)

	app.Get("/health", h.Health)
	app.Get("/", h.Index)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeAssetDoesNotExist, "no route for "+c.Method()+" "+c.Path())
	})
}
