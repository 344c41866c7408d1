package sandbox

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/birbparty/dandb-go/sdk"
	"github.com/gofiber/fiber/v2"
)

var paymentTypes = map[string]bool{
	"":            true,
	"FREE":        true,
	"CREDIT_CARD": true,
	"INVOICE":     true,
}

// UserEntitlements handles GET /v1.1/user/entitlements
func (h *Handler) UserEntitlements(c *fiber.Ctx) error {
	return respond(c, h.store.Entitlements(session(c).Email))
}

// AddUserEntitlements handles POST /v1.1/user/entitlements
func (h *Handler) AddUserEntitlements(c *fiber.Ctx) error {
	var req EntitlementsRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	var lines []OrderLine
	if err := json.Unmarshal([]byte(req.Orders), &lines); err != nil {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeIncorrectOrderSyntax, "orders is not a JSON list of products")
	}
	if len(lines) == 0 {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeIncorrectOrderSyntax, "orders is empty")
	}
	for i := range lines {
		if err := h.validate.Struct(&lines[i]); err != nil {
			return invalid(c, err)
		}
	}

	return h.grant(c, req.PaymentType, req.AgentIdentifier, lines)
}

// AddSingleEntitlement handles POST /v1.1/user/entitlement
func (h *Handler) AddSingleEntitlement(c *fiber.Ctx) error {
	var req SingleEntitlementRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	return h.grant(c, req.PaymentType, req.AgentIdentifier, []OrderLine{{
		ProductID: req.ProductID,
		PriceID:   req.PriceID,
		Quantity:  req.Quantity,
		DUNS:      req.DUNS,
	}})
}

// grant prices the order lines against the catalog and entitles the
// session owner
func (h *Handler) grant(c *fiber.Ctx, paymentType, agent string, lines []OrderLine) error {
	if !paymentTypes[paymentType] {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeUserRoutePaymentTypeIncorrect, "unknown payment type "+paymentType)
	}

	grants := make([]Entitlement, 0, len(lines))
	for _, line := range lines {
		product, ok := h.store.Product(line.ProductID)
		if !ok {
			return failMessage(c, fiber.StatusBadRequest, sdk.CodeUserRouteOrderPreparationFailure, "unknown product "+line.ProductID)
		}
		if paymentType == "FREE" && !product.Free {
			return failMessage(c, fiber.StatusBadRequest, sdk.CodeUserRouteProductShouldBeFree, "product "+line.ProductID+" is not free")
		}

		priceID := line.PriceID
		if priceID == "" {
			priceID = product.PriceID
		}
		grants = append(grants, Entitlement{
			ProductID:   line.ProductID,
			PriceID:     priceID,
			Quantity:    line.Quantity,
			DUNS:        line.DUNS,
			PaymentType: paymentType,
			Agent:       agent,
		})
	}

	granted, err := h.store.Entitle(session(c).Email, grants)
	switch {
	case errors.Is(err, ErrDuplicateProduct):
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeErrorDuplicateItemsInOrder, "order lists a product twice")
	case errors.Is(err, ErrAlreadyEntitled):
		return failMessage(c, fiber.StatusConflict, sdk.CodeUserRouteSimilarProductAlreadyPurchased, "product already purchased")
	case errors.Is(err, ErrTOSNotAccepted):
		return failMessage(c, fiber.StatusForbidden, sdk.CodeTOSAcceptError, "terms of service not accepted")
	case err != nil:
		return failMessage(c, fiber.StatusNotFound, sdk.CodeUserNotFound, "user not found")
	}
	return respond(c, granted)
}

// PostEmail handles POST /v1.1/email
func (h *Handler) PostEmail(c *fiber.Ctx) error {
	var req EmailRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	options := map[string]interface{}{}
	if req.Options != "" {
		if err := json.Unmarshal([]byte(req.Options), &options); err != nil {
			return failMessage(c, fiber.StatusBadRequest, sdk.CodeMalformedParameter, "options must be a JSON object")
		}
	}

	return respond(c, h.store.RecordEmail(Email{
		MessageID:    req.MessageID,
		UserEmail:    req.UserEmail,
		DisplayName:  req.DisplayName,
		FolderName:   req.FolderName,
		CampaignName: req.CampaignName,
		Options:      options,
	}))
}

// AuthCodeToken handles POST /v1/oauth2/token/authorization_code
func (h *Handler) AuthCodeToken(c *fiber.Ctx) error {
	var req AuthCodeTokenRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}

	sess, err := h.store.ExchangeAuthCode(req.Code)
	if err != nil {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeOAuthServerException, "authorization code is invalid or used")
	}
	return respond(c, sess)
}

// AuthorizeCode handles POST /v1/oauth2/authorize/code
func (h *Handler) AuthorizeCode(c *fiber.Ctx) error {
	var req AuthorizeRequest
	if err := h.parseBody(c, &req); err != nil {
		return invalid(c, err)
	}
	if req.ClientID != h.cfg.ClientID {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeOAuthServerException, "unknown client_id")
	}

	redirect, err := url.Parse(req.RedirectURI)
	if err != nil {
		return failMessage(c, fiber.StatusBadRequest, sdk.CodeMalformedParameter, "redirect_uri is not a URL")
	}

	code := h.store.IssueAuthCode(session(c).Email, req.ClientID, req.RedirectURI)
	q := redirect.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	redirect.RawQuery = q.Encode()

	return respond(c, fiber.Map{
		"code":         code,
		"state":        req.State,
		"redirect_uri": redirect.String(),
	})
}
