package sandbox

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/birbparty/dandb-go/sdk"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler holds all dependencies for sandbox handlers
type Handler struct {
	cfg      *Config
	store    *Store
	validate *validator.Validate
	started  time.Time
}

// NewHandler creates a new handler instance
func NewHandler(cfg *Config, store *Store) *Handler {
	return &Handler{
		cfg:      cfg,
		store:    store,
		validate: newValidator(),
		started:  time.Now(),
	}
}

var errUnparsable = errors.New("request body could not be parsed")

// parseBody decodes a form or JSON body into dst and validates it
func (h *Handler) parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errUnparsable
	}
	return h.validate.Struct(dst)
}

// parseQuery decodes the query string into dst and validates it
func (h *Handler) parseQuery(c *fiber.Ctx, dst interface{}) error {
	if err := c.QueryParser(dst); err != nil {
		return errUnparsable
	}
	return h.validate.Struct(dst)
}

// invalid writes a malformed parameter envelope
func invalid(c *fiber.Ctx, err error) error {
	return fail(c, fiber.StatusBadRequest, sdk.CodeMalformedParameter, validationDetails(err)...)
}

// Token handles POST /v1/oauth/token
func (h *Handler) Token(c *fiber.Ctx) error {
	var req TokenRequest
	if err := h.parseBody(c, &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(OAuthError{
			Error:       "invalid_request",
			Description: err.Error(),
		})
	}

	if req.GrantType != "client_credentials" {
		return c.Status(fiber.StatusBadRequest).JSON(OAuthError{Error: "unsupported_grant_type"})
	}

	idOK := subtle.ConstantTimeCompare([]byte(req.ClientID), []byte(h.cfg.ClientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(req.ClientSecret), []byte(h.cfg.ClientSecret)) == 1
	if !idOK || !secretOK {
		return c.Status(fiber.StatusUnauthorized).JSON(OAuthError{
			Error:       "invalid_client",
			Description: "client authentication failed",
		})
	}

	return c.JSON(TokenResponse{
		AccessToken: h.store.IssueAccessToken(h.cfg.AccessTokenTTL),
		TokenType:   "Bearer",
		ExpiresIn:   int(h.cfg.AccessTokenTTL.Seconds()),
	})
}

// Health handles GET /health
func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": "dandb-sandbox",
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// Index handles GET /
func (h *Handler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "dandb-sandbox",
		"status":  "running",
		"endpoints": fiber.Map{
			"token":         "POST /v1/oauth/token",
			"search":        "GET /v1/business/search",
			"international": "GET /v1/business/search/international",
			"verified":      "GET /v1/verified/:id",
			"recommended":   "GET /v1/business/:duns/recommended-products",
			"content":       "GET /v1/content/:page/:lang",
			"user":          "/v1/user/*, /v1.1/user/*",
			"email":         "POST /v1.1/email",
			"oauth2":        "POST /v1/oauth2/*",
			"health":        "GET /health",
			"metrics":       "GET " + h.cfg.MetricsPath,
		},
	})
}
