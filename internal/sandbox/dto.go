package sandbox

import (
	"errors"
	"reflect"
	"strings"

	"github.com/birbparty/dandb-go/sdk"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Meta is the envelope status block
type Meta struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Results wraps a successful payload
type Results struct {
	Results interface{} `json:"results"`
}

// ErrorDetail is one entry of the envelope error list
type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Envelope is the body of every DandB API response
type Envelope struct {
	Meta     Meta          `json:"meta"`
	Response *Results      `json:"response,omitempty"`
	Error    []ErrorDetail `json:"error,omitempty"`
}

// TokenResponse is the OAuth client credentials grant response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// OAuthError is the OAuth error response of the token endpoint
type OAuthError struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// TokenRequest is the form body of POST /v1/oauth/token
type TokenRequest struct {
	ClientID     string `form:"client_id" validate:"required"`
	ClientSecret string `form:"client_secret" validate:"required"`
	GrantType    string `form:"grant_type" validate:"required"`
}

// SearchQuery is the query of GET /v1/business/search
type SearchQuery struct {
	DUNS    string `query:"duns" validate:"omitempty,numeric,len=9"`
	Name    string `query:"name"`
	State   string `query:"state" validate:"required_with=Name"`
	Address string `query:"address"`
	City    string `query:"city"`
	Zip     string `query:"zip" validate:"omitempty,numeric"`
	Phone   string `query:"phone"`
}

// InternationalQuery is the query of GET /v1/business/search/international
type InternationalQuery struct {
	DUNS    string `query:"duns" validate:"omitempty,numeric,len=9"`
	Name    string `query:"name"`
	Country string `query:"country" validate:"required_with=Name"`
}

// UserTokenRequest is the form body of POST /v1/user/token
type UserTokenRequest struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RefreshRequest is the form body of POST /v1/user/token/refresh
type RefreshRequest struct {
	Email        string `form:"email" validate:"required,email"`
	RefreshToken string `form:"refresh_token" validate:"required"`
}

// PasswordResetRequest is the form body of POST /v1/user/password/reset
type PasswordResetRequest struct {
	Email string `form:"email" validate:"required,email"`
}

// PasswordChangeRequest is the form body of POST /v1/user/password/change
type PasswordChangeRequest struct {
	OldPassword string `form:"old_password" validate:"required"`
	NewPassword string `form:"new_password" validate:"required,min=8,nefield=OldPassword"`
}

// RegisterRequest is the form body of POST /v1.1/user/register
type RegisterRequest struct {
	Email        string `form:"email" validate:"required,email"`
	FirstName    string `form:"first_name" validate:"required"`
	LastName     string `form:"last_name" validate:"required"`
	AcceptedTOS  string `form:"accepted_tos" validate:"required,oneof=0 1"`
	Password     string `form:"password" validate:"omitempty,min=8"`
	PhoneNumber  string `form:"phone_number"`
	AddressLine1 string `form:"address_line_1"`
	AddressLine2 string `form:"address_line_2"`
	AddressLine3 string `form:"address_line_3"`
	City         string `form:"city"`
	StateCode    string `form:"state_code" validate:"omitempty,len=2"`
	PostalCode   string `form:"postal_code"`
	Source       string `form:"source"`
}

// hasAddress reports whether any address field was sent
func (r *RegisterRequest) hasAddress() bool {
	return r.AddressLine1 != "" || r.City != "" || r.StateCode != "" || r.PostalCode != ""
}

// completeAddress reports whether the required address fields were sent
func (r *RegisterRequest) completeAddress() bool {
	return r.AddressLine1 != "" && r.City != "" && r.StateCode != "" && r.PostalCode != ""
}

// AcceptTOSRequest is the form body of POST /v1/user/accept-tos
type AcceptTOSRequest struct {
	UserToken string `form:"user_token"`
	Email     string `form:"email" validate:"omitempty,email"`
}

// EntitlementsRequest is the form body of POST /v1.1/user/entitlements
type EntitlementsRequest struct {
	PaymentType     string `form:"payment_type"`
	AgentIdentifier string `form:"agent_identifier"`
	Orders          string `form:"orders" validate:"required"`
}

// OrderLine is one element of the orders JSON list
type OrderLine struct {
	ProductID string `json:"product_id" validate:"required"`
	PriceID   string `json:"price_id"`
	Quantity  int    `json:"quantity" validate:"min=1"`
	DUNS      string `json:"duns" validate:"omitempty,numeric,len=9"`
}

// SingleEntitlementRequest is the form body of POST /v1.1/user/entitlement
type SingleEntitlementRequest struct {
	PaymentType           string `form:"payment_type"`
	SendConfirmationEmail string `form:"send_confirmation_email" validate:"omitempty,oneof=0 1"`
	AgentIdentifier       string `form:"agent_identifier"`
	ProductID             string `form:"product_id" validate:"required"`
	PriceID               string `form:"price_id"`
	Quantity              int    `form:"quantity" validate:"min=1"`
	DUNS                  string `form:"duns" validate:"omitempty,numeric,len=9"`
}

// EmailRequest is the form body of POST /v1.1/email
type EmailRequest struct {
	UserEmail    string `form:"user_email" validate:"required,email"`
	DisplayName  string `form:"display_name"`
	FolderName   string `form:"folder_name"`
	CampaignName string `form:"campaign_name"`
	MessageID    string `form:"message_id" validate:"required"`
	Options      string `form:"options"`
}

// AuthCodeTokenRequest is the JSON body of POST /v1/oauth2/token/authorization_code
type AuthCodeTokenRequest struct {
	Code string `json:"code" validate:"required"`
}

// AuthorizeRequest is the JSON body of POST /v1/oauth2/authorize/code
type AuthorizeRequest struct {
	ClientID    string `json:"client_id" validate:"required"`
	RedirectURI string `json:"redirect_uri" validate:"required,url"`
	State       string `json:"state"`
}

// newValidator reports field errors under their wire names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "query", "json"} {
			if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// validationDetails converts validator errors into envelope error entries
func validationDetails(err error) []ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Message: err.Error()}}
	}
	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{
			Field:   fe.Field(),
			Message: "failed on the '" + fe.Tag() + "' rule",
		})
	}
	return details
}

// respond writes a successful envelope
func respond(c *fiber.Ctx, results interface{}) error {
	return c.JSON(Envelope{
		Meta:     Meta{Code: fiber.StatusOK},
		Response: &Results{Results: results},
	})
}

// fail writes an error envelope
func fail(c *fiber.Ctx, status int, code sdk.ErrorCode, details ...ErrorDetail) error {
	return c.Status(status).JSON(Envelope{
		Meta:  Meta{Code: status, ErrorCode: code.String()},
		Error: details,
	})
}

// failMessage writes an error envelope with one message
func failMessage(c *fiber.Ctx, status int, code sdk.ErrorCode, message string) error {
	return fail(c, status, code, ErrorDetail{Message: message})
}
