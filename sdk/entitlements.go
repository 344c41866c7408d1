package sdk

import (
	"context"
	"fmt"
)

const (
	userEntitlementsPath = "/v1.1/user/entitlements"
	userEntitlementPath  = "/v1.1/user/entitlement"
)

// UserEntitlements lists a user's entitlements
func (c *client) UserEntitlements(ctx context.Context, userToken string) (*Response, error) {
	return c.get(ctx, userEntitlementsPath, Params{}.Add("user_token", userToken))
}

// AddUserEntitlements entitles every product in the order
func (c *client) AddUserEntitlements(ctx context.Context, userToken string, order *Order) (*Response, error) {
	if order == nil {
		order = NewOrder()
	}
	orders, err := order.ProductsJSON()
	if err != nil {
		return nil, NewError(ErrorTypeValidation, fmt.Sprintf("failed to encode orders: %v", err), err)
	}

	params := Params{}.
		Add("user_token", userToken).
		Optional("payment_type", order.paymentType).
		Add("orders", orders)
	return c.post(ctx, userEntitlementsPath, order.params(params))
}

// AddSingleProductUserEntitlement entitles the first product in the order
func (c *client) AddSingleProductUserEntitlement(ctx context.Context, userToken string, order *Order) (*Response, error) {
	if order == nil {
		order = NewOrder()
	}
	product := order.FirstProduct()
	if product == nil {
		product = NewProduct()
	}

	params := Params{}.
		Add("user_token", userToken).
		Optional("payment_type", order.paymentType).
		Add("send_confirmation_email", formBool(order.sendConfirmationEmail))
	params = product.params(params)
	return c.post(ctx, userEntitlementPath, order.params(params))
}
