package sandbox

import (
	"errors"

	"github.com/birbparty/dandb-go/sdk"
	"github.com/gofiber/fiber/v2"
)

// UserToken handles POST /v1/user/token
func (h *Handler) UserToken(c *fiber.Ctx) error {
	var req UserTokenRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	sess, err := h.store.Login(req.Email, req.Password)
	if err != nil {
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeUserRouteIncorrectCredentials, "incorrect email or password")
	}
	return respond(c, sess)
}

// UserTokenRefresh handles POST /v1/user/token/refresh
func (h *Handler) UserTokenRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	sess, err := h.store.Refresh(req.Email, req.RefreshToken)
	if err != nil {
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeUserRouteInvalidUserToken, "refresh token is invalid")
	}
	return respond(c, sess)
}

// UserTokenStatus handles GET /v1/user/token
func (h *Handler) UserTokenStatus(c *fiber.Ctx) error {
	sess := session(c)
	return respond(c, fiber.Map{
		"valid":      true,
		"email":      sess.Email,
		"expires_at": sess.ExpiresAt,
	})
}

// UserUsingToken handles GET /v1/user/token/status
func (h *Handler) UserUsingToken(c *fiber.Ctx) error {
	user, err := h.store.User(session(c).Email)
	if err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeUserNotFound, "user not found")
	}
	return respond(c, fiber.Map{
		"email":        user.Email,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"accepted_tos": user.AcceptedTOS,
	})
}

// UserDetails handles GET /v1.1/user
func (h *Handler) UserDetails(c *fiber.Ctx) error {
	user, err := h.store.User(session(c).Email)
	if err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeUserNotFound, "user not found")
	}
	return respond(c, fiber.Map{
		"user":         user,
		"entitlements": h.store.Entitlements(user.Email),
	})
}

// UserLogout handles POST /v1/user/logout
func (h *Handler) UserLogout(c *fiber.Ctx) error {
	if err := h.store.Logout(session(c).UserToken); err != nil {
		return failMessage(c, fiber.StatusUnauthorized, sdk.CodeUserTokenInvalid, "user token is invalid")
	}
	return respond(c, fiber.Map{"logged_out": true})
}

// PasswordReset handles POST /v1/user/password/reset
func (h *Handler) PasswordReset(c *fiber.Ctx) error {
	var req PasswordResetRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	if err := h.store.ResetPassword(req.Email); err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeUserRouteEmailDoesNotExist, "email is not registered")
	}
	return respond(c, fiber.Map{"email": req.Email, "sent": true})
}

// PasswordChange handles POST /v1/user/password/change
func (h *Handler) PasswordChange(c *fiber.Ctx) error {
	var req PasswordChangeRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	err := h.store.ChangePassword(session(c).Email, req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrWrongPassword):
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeUserRouteIncorrectOldPassword, "old password is incorrect")
	case err != nil:
		return failMessage(c, fiber.StatusNotFound, sdk.CodeUserNotFound, "user not found")
	}
	return respond(c, fiber.Map{"changed": true})
}

// UserRegister handles POST /v1.1/user/register
func (h *Handler) UserRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}
	if req.AcceptedTOS != "1" {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeTOSAcceptError, "terms of service must be accepted")
	}
	if req.hasAddress() && !req.completeAddress() {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeAddressFieldsMissing,
			"address_line_1, city, state_code and postal_code are required together")
	}

	user, err := h.store.Register(User{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		AddressLine3: req.AddressLine3,
		City:         req.City,
		StateCode:    req.StateCode,
		PostalCode:   req.PostalCode,
		Source:       req.Source,
		AcceptedTOS:  true,
	}, req.Password)
	if err != nil {
		return failMessage(c, fiber.StatusConflict, sdk.CodeUserRouteAccountEmailUnavailable, "email is already registered")
	}
	return respond(c, user)
}

// UserAcceptTOS handles POST /v1/user/accept-tos. The account is found by
// user token when one is sent, otherwise by email.
func (h *Handler) UserAcceptTOS(c *fiber.Ctx) error {
	var req AcceptTOSRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	email := req.Email
	if req.UserToken != "" {
		sess, err := h.store.Session(req.UserToken)
		if err != nil {
			return failMessage(c, fiber.StatusUnauthorized, sdk.CodeUserTokenInvalid, "user token is invalid")
		}
		email = sess.Email
	}
	if email == "" {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeMalformedParameter, "user_token or email is required")
	}

	user, err := h.store.AcceptTOS(email)
	if err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeUserNotFound, "user not found")
	}
	return respond(c, user)
}
