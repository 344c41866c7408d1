package sdk

import "context"

const (
	userTokenPath        = "/v1/user/token"
	userTokenRefreshPath = "/v1/user/token/refresh"
	userTokenStatusPath  = "/v1/user/token/status"
	userDetailsPath      = "/v1.1/user"
	userLogoutPath       = "/v1/user/logout"
	passwordResetPath    = "/v1/user/password/reset"
	passwordChangePath   = "/v1/user/password/change"
	userRegisterPath     = "/v1.1/user/register"
	userAcceptTOSPath    = "/v1/user/accept-tos"
	authCodeTokenPath    = "/v1/oauth2/token/authorization_code"
	authorizeCodePath    = "/v1/oauth2/authorize/code"
)

// UserToken issues a user token
func (c *client) UserToken(ctx context.Context, email, password string) (*Response, error) {
	return c.post(ctx, userTokenPath, Params{}.
		Add("email", email).
		Add("password", password))
}

// UserTokenRefresh refreshes a user token
func (c *client) UserTokenRefresh(ctx context.Context, email, refreshToken string) (*Response, error) {
	return c.post(ctx, userTokenRefreshPath, Params{}.
		Add("email", email).
		Add("refresh_token", refreshToken))
}

// UserTokenStatus checks a user token
func (c *client) UserTokenStatus(ctx context.Context, userToken string) (*Response, error) {
	return c.get(ctx, userTokenPath, Params{}.Add("user_token", userToken))
}

// UserUsingToken looks up the user behind a token
func (c *client) UserUsingToken(ctx context.Context, userToken string) (*Response, error) {
	return c.get(ctx, userTokenStatusPath, Params{}.Add("user_token", userToken))
}

// UserFullDetails returns the full user record
func (c *client) UserFullDetails(ctx context.Context, userToken string) (*Response, error) {
	return c.get(ctx, userDetailsPath, Params{}.Add("user_token", userToken))
}

// UserLogout logs a user out
func (c *client) UserLogout(ctx context.Context, userToken string) (*Response, error) {
	return c.post(ctx, userLogoutPath, Params{}.Add("user_token", userToken))
}

// PasswordReset starts a password reset
func (c *client) PasswordReset(ctx context.Context, email string) (*Response, error) {
	return c.post(ctx, passwordResetPath, Params{}.Add("email", email))
}

// PasswordChange changes a user's password
func (c *client) PasswordChange(ctx context.Context, userToken, oldPassword, newPassword string) (*Response, error) {
	return c.post(ctx, passwordChangePath, Params{}.
		Add("user_token", userToken).
		Add("old_password", oldPassword).
		Add("new_password", newPassword))
}

// UserRegister registers a new user
func (c *client) UserRegister(ctx context.Context, reg Registration) (*Response, error) {
	return c.post(ctx, userRegisterPath, reg.params())
}

// UserAcceptTOS accepts the terms of service
func (c *client) UserAcceptTOS(ctx context.Context, userToken, email string) (*Response, error) {
	var params Params
	switch {
	case userToken != "":
		params = params.Add("user_token", userToken)
	case email != "":
		params = params.Add("email", email)
	default:
		return nil, NewError(ErrorTypeValidation, ErrMissingIdentity.Error(), ErrMissingIdentity)
	}
	return c.post(ctx, userAcceptTOSPath, params)
}

// UserTokenFromAuthCode exchanges an authorization code
func (c *client) UserTokenFromAuthCode(ctx context.Context, code string) (*Response, error) {
	return c.postJSON(ctx, authCodeTokenPath, Params{}.Add("code", code))
}

// AuthCodeFromUserToken requests an authorization code
func (c *client) AuthCodeFromUserToken(ctx context.Context, userToken, clientID, redirectURL, state string) (*Response, error) {
	return c.postJSON(ctx, authorizeCodePath, Params{}.
		Optional("user_token", userToken).
		Add("client_id", clientID).
		Add("redirect_uri", redirectURL).
		Add("state", state))
}
