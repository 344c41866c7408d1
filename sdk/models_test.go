package sdk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Defaults(t *testing.T) {
	p := NewProduct()
	assert.Equal(t, 1, p.Quantity())
	assert.Empty(t, p.ProductID())

	p.SetProductID("10").
		SetPriceID("p-1").
		SetQuantity(3).
		SetDUNS("007280554").
		SetPromotionIdentifier("promo").
		SetPaymentSubTypeCode("sub").
		SetPaymentInstrumentIdentifier("card")

	assert.Equal(t, "10", p.ProductID())
	assert.Equal(t, "p-1", p.PriceID())
	assert.Equal(t, 3, p.Quantity())
	assert.Equal(t, "007280554", p.DUNS())
	assert.Equal(t, "promo", p.PromotionIdentifier())
	assert.Equal(t, "sub", p.PaymentSubTypeCode())
	assert.Equal(t, "card", p.PaymentInstrumentIdentifier())
}

func TestOrder_Builder(t *testing.T) {
	agent := NewAgent().SetAgentID("a1").SetAgentOfficeCode("off").SetAssignedAgentCode("as")
	order := NewOrder().
		SetPaymentType("FREE").
		SetSendConfirmationEmail(true).
		SetAgent(agent).
		SetPartnerIdentifier("partner").
		SetOrderLevelPromotionIdentifier("olp").
		SetCaseReferenceIdentifier("case").
		SetFive9SessionIdentifier("five9").
		SetPaymentTypeCode("ptc").
		SetCustomerGroupDomainCode("cgd").
		AddProduct(NewProduct().SetProductID("1")).
		AddProduct(nil).
		AddProduct(NewProduct().SetProductID("2"))

	assert.Equal(t, "FREE", order.PaymentType())
	assert.True(t, order.SendConfirmationEmail())
	assert.True(t, order.HasAgent())
	assert.Same(t, agent, order.Agent())
	assert.Equal(t, "a1", order.Agent().AgentID())
	assert.Equal(t, "partner", order.PartnerIdentifier())
	assert.Equal(t, "olp", order.OrderLevelPromotionIdentifier())
	assert.Equal(t, "case", order.CaseReferenceIdentifier())
	assert.Equal(t, "five9", order.Five9SessionIdentifier())
	assert.Equal(t, "ptc", order.PaymentTypeCode())
	assert.Equal(t, "cgd", order.CustomerGroupDomainCode())
	require.Len(t, order.Products(), 2)
	assert.Equal(t, "1", order.FirstProduct().ProductID())
}

func TestOrder_Empty(t *testing.T) {
	order := NewOrder()
	assert.False(t, order.SendConfirmationEmail())
	assert.False(t, order.HasAgent())
	assert.Nil(t, order.FirstProduct())

	orders, err := order.ProductsJSON()
	require.NoError(t, err)
	assert.Equal(t, `[]`, orders)

	assert.Empty(t, order.params(nil))
}

func TestOrder_ProductsJSON(t *testing.T) {
	order := NewOrder().
		AddProduct(NewProduct().SetProductID("1").SetPriceID("p-1")).
		AddProduct(NewProduct().SetProductID("2").SetQuantity(4).SetDUNS("007280554"))

	orders, err := order.ProductsJSON()
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(orders), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, map[string]any{"product_id": "1", "price_id": "p-1", "quantity": float64(1)}, decoded[0])
	assert.Equal(t, map[string]any{"product_id": "2", "quantity": float64(4), "duns": "007280554"}, decoded[1])
}

func TestRegistration_Params(t *testing.T) {
	t.Run("required only", func(t *testing.T) {
		params := Registration{
			Email:       "a@b.com",
			FirstName:   "A",
			LastName:    "B",
			AcceptedTOS: true,
		}.params()

		assert.Equal(t, []string{"email", "first_name", "last_name", "accepted_tos"}, params.Names())
		tos, _ := params.Get("accepted_tos")
		assert.Equal(t, "1", tos)
	})

	t.Run("all fields", func(t *testing.T) {
		params := Registration{
			Email:        "a@b.com",
			FirstName:    "A",
			LastName:     "B",
			Password:     "pw",
			PhoneNumber:  "555",
			AddressLine1: "1",
			AddressLine2: "2",
			AddressLine3: "3",
			City:         "Malibu",
			StateCode:    "CA",
			PostalCode:   "90265",
			Source:       "web",
		}.params()

		assert.Equal(t, []string{
			"email", "first_name", "last_name", "accepted_tos",
			"password", "phone_number", "address_line_1", "address_line_2", "address_line_3",
			"city", "state_code", "postal_code", "source",
		}, params.Names())
		tos, _ := params.Get("accepted_tos")
		assert.Equal(t, "0", tos)
	})
}

func TestEmail_Params(t *testing.T) {
	params, err := Email{
		UserEmail:    "a@b.com",
		DisplayName:  "A",
		FolderName:   "folder",
		CampaignName: "campaign",
		MessageID:    "m-1",
		Options:      map[string]any{"first_name": "A"},
	}.params()
	require.NoError(t, err)

	assert.Equal(t, []string{"user_email", "display_name", "folder_name", "campaign_name", "message_id", "options"}, params.Names())
	options, _ := params.Get("options")
	assert.JSONEq(t, `{"first_name":"A"}`, options)

	params, err = Email{UserEmail: "a@b.com"}.params()
	require.NoError(t, err)
	options, _ = params.Get("options")
	assert.Equal(t, `{}`, options)

	_, err = Email{Options: map[string]any{"bad": make(chan int)}}.params()
	assert.Error(t, err)
}
