package sandbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/birbparty/dandb-go/internal/telemetry"
	"github.com/birbparty/dandb-go/sdk"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	accessTokenHeader = "x-access-token"
	userTokenHeader   = "user-token"
	sessionKey        = "session"
)

// requireAccessToken rejects requests without a live API access token
func (h *Handler) requireAccessToken(c *fiber.Ctx) error {
	token := c.Get(accessTokenHeader)
	if token == "" {
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeOAuthServerException, "missing access token")
	}
	if !h.store.ValidAccessToken(token) {
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeOAuthServerException, "access token is invalid or expired")
	}
	return c.Next()
}

// userToken finds the user token in the query, the form body or the
// user-token header, in that order
func userToken(c *fiber.Ctx) string {
	if token := c.Query("user_token"); token != "" {
		return token
	}
	if token := c.FormValue("user_token"); token != "" {
		return token
	}
	return c.Get(userTokenHeader)
}

// requireUserToken resolves the user token into a session for the handler
func (h *Handler) requireUserToken(c *fiber.Ctx) error {
	token := userToken(c)
	if token == "" {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeUserTokenMissing, "user_token is required")
	}

	sess, err := h.store.Session(token)
	switch {
	case errors.Is(err, ErrTokenExpired):
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeUserTokenExpired, "user token has expired")
	case err != nil:
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeUserTokenInvalid, "user token is invalid")
	}

	c.Locals(sessionKey, sess)
	return c.Next()
}

// session returns the session stored by requireUserToken
func session(c *fiber.Ctx) *Session {
	sess, _ := c.Locals(sessionKey).(*Session)
	return sess
}

// errorHandler renders unhandled errors as an envelope
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}

	if status >= fiber.StatusInternalServerError {
		telemetry.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
			"error":  err.Error(),
		}).Error("Unhandled sandbox error")
	}

	return c.Status(status).JSON(Envelope{
		Meta:  Meta{Code: status},
		Error: []ErrorDetail{{Message: err.Error()}},
	})
}

// timingMiddleware adds the X-Response-Time header
func timingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		c.Set("X-Response-Time", fmt.Sprintf("%d ms", time.Since(start).Milliseconds()))
		return err
	}
}
