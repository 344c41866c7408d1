package sandbox

import (
	"github.com/birbparty/dandb-go/sdk"
	"github.com/gofiber/fiber/v2"
)

// Search handles GET /v1/business/search. The first of duns, name or
// phone selects the search mode.
func (h *Handler) Search(c *fiber.Ctx) error {
	var q SearchQuery
	if err := h.parseQuery(c, &q); err != nil {
		return invalid(c, err)
	}

	switch {
	case q.DUNS != "":
		return respond(c, h.store.SearchByDUNS(q.DUNS, false))
	case q.Name != "":
		return respond(c, h.store.SearchByNameAddress(q.Name, q.State, AddressFilter{
			Address: q.Address,
			City:    q.City,
			Zip:     q.Zip,
		}))
	case q.Phone != "":
		return respond(c, h.store.SearchByPhone(q.Phone))
	}
	return failMessage(c, fiber.StatusBadRequest, sdk.CodeMalformedParameter, "one of duns, name or phone is required")
}

// InternationalSearch handles GET /v1/business/search/international
func (h *Handler) InternationalSearch(c *fiber.Ctx) error {
	var q InternationalQuery
	if err := h.parseQuery(c, &q); err != nil {
		return invalid(c, err)
	}

	switch {
	case q.DUNS != "":
		return respond(c, h.store.SearchByDUNS(q.DUNS, true))
	case q.Name != "":
		return respond(c, h.store.SearchByNameCountry(q.Name, q.Country))
	}
	return failMessage(c, fiber.StatusBadRequest, sdk.CodeMalformedParameter, "one of duns or name is required")
}

// VerifiedProfile handles GET /v1/verified/:id. With duns=true the id is
// a DUNS number.
func (h *Handler) VerifiedProfile(c *fiber.Ctx) error {
	business, err := h.store.VerifiedBusiness(c.Params("id"), c.QueryBool("duns"))
	if err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeBusinessIDIsInvalid, "no verified profile for "+c.Params("id"))
	}
	return respond(c, business)
}

// RecommendedProducts handles GET /v1/business/:duns/recommended-products
func (h *Handler) RecommendedProducts(c *fiber.Ctx) error {
	products, err := h.store.Recommendations(c.Params("duns"))
	if err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeBusinessIDIsInvalid, "unknown DUNS "+c.Params("duns"))
	}
	return respond(c, products)
}

// Content handles GET /v1/content/:page/:lang
func (h *Handler) Content(c *fiber.Ctx) error {
	page, err := h.store.Page(c.Params("page"), c.Params("lang"))
	if err != nil {
		return failMessage(c, fiber.StatusNotFound, sdk.CodeAssetDoesNotExist, "page not found")
	}
	return respond(c, page)
}
