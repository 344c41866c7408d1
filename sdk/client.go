package sdk

import (
	"context"
	"fmt"
	"sync"
)

// Client is a DandB API client. Every call resolves an access token,
// sends one HTTP request and returns the response envelope unchanged.
// All methods are safe for concurrent use.
//
// A returned error always means the request did not produce an envelope
// (network failure, timeout, non-JSON body). Business failures are data:
// check Response.IsValid.
//
// Example:
//
//	client, err := sdk.NewClient(sdk.DefaultConfig().
//	    WithCredentials(os.Getenv("DANDB_CLIENT_ID"), os.Getenv("DANDB_CLIENT_SECRET")).
//	    WithTokenCache(sdk.NewMemoryTokenCache()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	resp, err := client.VerifiedProfileWithDUNS(ctx, "007280554")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if data, ok := resp.ResponseData(); ok {
//	    fmt.Println(data)
//	}
type Client interface {
	BusinessAPI
	UserAPI
	EntitlementAPI
	ContentAPI

	// AccessToken returns the API access token, from Config.AccessToken,
	// the TokenCache or a fresh request, in that order. ok is false when
	// the token endpoint answered without a token.
	AccessToken(ctx context.Context) (token string, ok bool, err error)

	// Close releases idle connections. Close is safe to call multiple
	// times; calls made after Close return ErrClientClosed.
	Close() error
}

// BusinessAPI covers business search and verified profiles.
type BusinessAPI interface {
	// BusinessSearchByDUNS searches US businesses by DUNS number.
	BusinessSearchByDUNS(ctx context.Context, duns string) (*Response, error)

	// BusinessSearchByNameAddress searches US businesses by name and state,
	// optionally narrowed by street address, city and zip. Unset optional
	// fields are not sent.
	BusinessSearchByNameAddress(ctx context.Context, name, state string, opts *AddressOptions) (*Response, error)

	// BusinessSearchByPhone searches US businesses by phone number.
	BusinessSearchByPhone(ctx context.Context, phone string) (*Response, error)

	// InternationalSearchByDUNS searches non-US businesses by DUNS number.
	InternationalSearchByDUNS(ctx context.Context, duns string) (*Response, error)

	// InternationalSearchByNameCountry searches non-US businesses by name and country.
	InternationalSearchByNameCountry(ctx context.Context, name, country string) (*Response, error)

	// VerifiedProfile returns verified information for a DandB business id.
	VerifiedProfile(ctx context.Context, businessID string) (*Response, error)

	// VerifiedProfileWithDUNS returns verified information keyed by DUNS number.
	VerifiedProfileWithDUNS(ctx context.Context, duns string) (*Response, error)

	// ProductRecommendations returns products recommended for a business.
	ProductRecommendations(ctx context.Context, duns string) (*Response, error)
}

// UserAPI covers user tokens, accounts and passwords.
type UserAPI interface {
	// UserToken issues a user token for an existing user.
	UserToken(ctx context.Context, email, password string) (*Response, error)

	// UserTokenRefresh issues a new user token from a refresh token.
	UserTokenRefresh(ctx context.Context, email, refreshToken string) (*Response, error)

	// UserTokenStatus reports the status of a user token.
	UserTokenStatus(ctx context.Context, userToken string) (*Response, error)

	// UserUsingToken returns the user a token belongs to.
	UserUsingToken(ctx context.Context, userToken string) (*Response, error)

	// UserFullDetails returns the full user record for a token.
	UserFullDetails(ctx context.Context, userToken string) (*Response, error)

	// UserLogout invalidates a user token.
	UserLogout(ctx context.Context, userToken string) (*Response, error)

	// PasswordReset sends the password reset email.
	PasswordReset(ctx context.Context, email string) (*Response, error)

	// PasswordChange changes a password given the current one.
	PasswordChange(ctx context.Context, userToken, oldPassword, newPassword string) (*Response, error)

	// UserRegister creates a new account.
	UserRegister(ctx context.Context, reg Registration) (*Response, error)

	// UserAcceptTOS records terms of service acceptance for the user
	// identified by token or, when the token is empty, by email. Both
	// empty returns ErrMissingIdentity without sending a request.
	UserAcceptTOS(ctx context.Context, userToken, email string) (*Response, error)

	// UserTokenFromAuthCode exchanges an OAuth2 authorization code for a user token.
	UserTokenFromAuthCode(ctx context.Context, code string) (*Response, error)

	// AuthCodeFromUserToken requests an OAuth2 authorization code for the
	// user token's owner. The code is appended to redirectURL by the API.
	AuthCodeFromUserToken(ctx context.Context, userToken, clientID, redirectURL, state string) (*Response, error)
}

// EntitlementAPI covers product entitlements.
type EntitlementAPI interface {
	// UserEntitlements lists the products a user is entitled to.
	UserEntitlements(ctx context.Context, userToken string) (*Response, error)

	// AddUserEntitlements entitles every product of order to the user.
	AddUserEntitlements(ctx context.Context, userToken string, order *Order) (*Response, error)

	// AddSingleProductUserEntitlement entitles the first product of order to the user.
	AddSingleProductUserEntitlement(ctx context.Context, userToken string, order *Order) (*Response, error)
}

// ContentAPI covers CMS pages and transactional email.
type ContentAPI interface {
	// PageFromCMS returns a CMS page. An empty language means "en".
	PageFromCMS(ctx context.Context, page, language string) (*Response, error)

	// PostEmail sends a templated email.
	PostEmail(ctx context.Context, email Email) (*Response, error)
}

// client is the concrete implementation of the Client interface
type client struct {
	transport *httpTransport
	tokens    *tokenProvider
	dispatch  *dispatcher
	config    *Config
	mu        sync.RWMutex
	closed    bool
}

// NewClient creates a new DandB client with the provided configuration.
// If config is nil, DefaultConfig is used, which still needs credentials.
//
// The client maintains a connection pool for efficient HTTP communication
// and is safe for concurrent use by multiple goroutines.
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithBaseURL("https://api.sandbox.dandb.com").
//	    WithCredentials(id, secret).
//	    WithTimeout(10 * time.Second)
//	client, err := sdk.NewClient(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewClient(config *Config) (Client, error) {
	return newClient(config)
}

func newClient(config *Config) (*client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.clone()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	transport, err := newHTTPTransport(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	tokens := newTokenProvider(transport, config)
	return &client{
		transport: transport,
		tokens:    tokens,
		dispatch:  newDispatcher(transport, tokens),
		config:    config,
	}, nil
}

// AccessToken resolves the API access token
func (c *client) AccessToken(ctx context.Context) (string, bool, error) {
	if err := c.checkClosed(); err != nil {
		return "", false, err
	}
	return c.tokens.AccessToken(ctx)
}

// Close closes the client and releases resources
func (c *client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	return c.transport.close()
}

// checkClosed checks if the client is closed
func (c *client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	return nil
}

func (c *client) get(ctx context.Context, path string, params Params) (*Response, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return c.dispatch.get(ctx, path, params)
}

func (c *client) post(ctx context.Context, path string, params Params) (*Response, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return c.dispatch.post(ctx, path, params)
}

func (c *client) postJSON(ctx context.Context, path string, params Params) (*Response, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}
	return c.dispatch.postJSON(ctx, path, params)
}
