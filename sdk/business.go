package sdk

import "context"

const (
	businessSearchPath      = "/v1/business/search"
	internationalSearchPath = "/v1/business/search/international"
	verifiedProfilePath     = "/v1/verified/{0}"
	recommendedProductsPath = "/v1/business/{0}/recommended-products"
)

// AddressOptions narrows a name search. Empty fields are not sent.
type AddressOptions struct {
	Address string
	City    string
	Zip     string
}

// BusinessSearchByDUNS searches by DUNS number
func (c *client) BusinessSearchByDUNS(ctx context.Context, duns string) (*Response, error) {
	return c.get(ctx, businessSearchPath, Params{}.Add("duns", duns))
}

// BusinessSearchByNameAddress searches by name, state and optional address
func (c *client) BusinessSearchByNameAddress(ctx context.Context, name, state string, opts *AddressOptions) (*Response, error) {
	params := Params{}.
		Add("name", name).
		Add("state", state)
	if opts != nil {
		params = params.
			Optional("address", opts.Address).
			Optional("city", opts.City).
			Optional("zip", opts.Zip)
	}
	return c.get(ctx, businessSearchPath, params)
}

// BusinessSearchByPhone searches by phone number
func (c *client) BusinessSearchByPhone(ctx context.Context, phone string) (*Response, error) {
	return c.get(ctx, businessSearchPath, Params{}.Add("phone", phone))
}

// InternationalSearchByDUNS searches non-US businesses by DUNS
func (c *client) InternationalSearchByDUNS(ctx context.Context, duns string) (*Response, error) {
	return c.get(ctx, internationalSearchPath, Params{}.Add("duns", duns))
}

// InternationalSearchByNameCountry searches non-US businesses by name and country
func (c *client) InternationalSearchByNameCountry(ctx context.Context, name, country string) (*Response, error) {
	return c.get(ctx, internationalSearchPath, Params{}.
		Add("name", name).
		Add("country", country))
}

// VerifiedProfile fetches a verified profile by business id
func (c *client) VerifiedProfile(ctx context.Context, businessID string) (*Response, error) {
	return c.get(ctx, buildPath(verifiedProfilePath, businessID), nil)
}

// VerifiedProfileWithDUNS fetches a verified profile keyed by DUNS
func (c *client) VerifiedProfileWithDUNS(ctx context.Context, duns string) (*Response, error) {
	return c.get(ctx, buildPath(verifiedProfilePath, duns), Params{}.Add("duns", "true"))
}

// ProductRecommendations fetches recommended products for a business
func (c *client) ProductRecommendations(ctx context.Context, duns string) (*Response, error) {
	return c.get(ctx, buildPath(recommendedProductsPath, duns), nil)
}
