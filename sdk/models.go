package sdk

import (
	"encoding/json"
	"strconv"
)

// Product is one line of an entitlement order.
// Quantity defaults to 1; every other unset field is left out of the request.
type Product struct {
	productID                   string
	priceID                     string
	quantity                    int
	duns                        string
	promotionIdentifier         string
	paymentSubTypeCode          string
	paymentInstrumentIdentifier string
}

// NewProduct returns a product with quantity 1.
func NewProduct() *Product {
	return &Product{quantity: 1}
}

// SetProductID sets the DandB product id
func (p *Product) SetProductID(id string) *Product {
	p.productID = id
	return p
}

// SetPriceID sets the price id
func (p *Product) SetPriceID(id string) *Product {
	p.priceID = id
	return p
}

// SetQuantity sets the quantity
func (p *Product) SetQuantity(quantity int) *Product {
	p.quantity = quantity
	return p
}

// SetDUNS sets the DUNS number the product applies to
func (p *Product) SetDUNS(duns string) *Product {
	p.duns = duns
	return p
}

// SetPromotionIdentifier sets the product level promotion
func (p *Product) SetPromotionIdentifier(id string) *Product {
	p.promotionIdentifier = id
	return p
}

// SetPaymentSubTypeCode sets the payment sub type
func (p *Product) SetPaymentSubTypeCode(code string) *Product {
	p.paymentSubTypeCode = code
	return p
}

// SetPaymentInstrumentIdentifier sets the payment instrument
func (p *Product) SetPaymentInstrumentIdentifier(id string) *Product {
	p.paymentInstrumentIdentifier = id
	return p
}

// ProductID returns the product id
func (p *Product) ProductID() string { return p.productID }

// PriceID returns the price id
func (p *Product) PriceID() string { return p.priceID }

// Quantity returns the quantity
func (p *Product) Quantity() int { return p.quantity }

// DUNS returns the DUNS number
func (p *Product) DUNS() string { return p.duns }

// PromotionIdentifier returns the promotion
func (p *Product) PromotionIdentifier() string { return p.promotionIdentifier }

// PaymentSubTypeCode returns the payment sub type
func (p *Product) PaymentSubTypeCode() string { return p.paymentSubTypeCode }

// PaymentInstrumentIdentifier returns the payment instrument
func (p *Product) PaymentInstrumentIdentifier() string { return p.paymentInstrumentIdentifier }

// productLine is the wire shape of a product inside the orders list
type productLine struct {
	ProductID                   string `json:"product_id,omitempty"`
	PriceID                     string `json:"price_id,omitempty"`
	Quantity                    int    `json:"quantity"`
	DUNS                        string `json:"duns,omitempty"`
	PromotionIdentifier         string `json:"promotion_identifier,omitempty"`
	PaymentSubTypeCode          string `json:"payment_sub_type_code,omitempty"`
	PaymentInstrumentIdentifier string `json:"payment_instrument_identifier,omitempty"`
}

func (p *Product) line() productLine {
	return productLine{
		ProductID:                   p.productID,
		PriceID:                     p.priceID,
		Quantity:                    p.quantity,
		DUNS:                        p.duns,
		PromotionIdentifier:         p.promotionIdentifier,
		PaymentSubTypeCode:          p.paymentSubTypeCode,
		PaymentInstrumentIdentifier: p.paymentInstrumentIdentifier,
	}
}

// params appends the single-product form fields.
func (p *Product) params(params Params) Params {
	return params.
		Optional("product_id", p.productID).
		Optional("price_id", p.priceID).
		Add("quantity", strconv.Itoa(p.quantity)).
		Optional("duns", p.duns).
		Optional("promotion_identifier", p.promotionIdentifier).
		Optional("payment_sub_type_code", p.paymentSubTypeCode).
		Optional("payment_instrument_identifier", p.paymentInstrumentIdentifier)
}

// Agent identifies the sales agent placing an order.
type Agent struct {
	agentID           string
	agentOfficeCode   string
	assignedAgentCode string
}

// NewAgent returns an empty agent
func NewAgent() *Agent {
	return &Agent{}
}

// SetAgentID sets the agent identifier
func (a *Agent) SetAgentID(id string) *Agent {
	a.agentID = id
	return a
}

// SetAgentOfficeCode sets the office code
func (a *Agent) SetAgentOfficeCode(code string) *Agent {
	a.agentOfficeCode = code
	return a
}

// SetAssignedAgentCode sets the assigned agent code
func (a *Agent) SetAssignedAgentCode(code string) *Agent {
	a.assignedAgentCode = code
	return a
}

// AgentID returns the agent identifier
func (a *Agent) AgentID() string { return a.agentID }

// AgentOfficeCode returns the office code
func (a *Agent) AgentOfficeCode() string { return a.agentOfficeCode }

// AssignedAgentCode returns the assigned agent code
func (a *Agent) AssignedAgentCode() string { return a.assignedAgentCode }

func (a *Agent) params(params Params) Params {
	if a == nil {
		return params
	}
	return params.
		Optional("agent_identifier", a.agentID).
		Optional("agent_office_code", a.agentOfficeCode).
		Optional("assigned_agent_code", a.assignedAgentCode)
}

// Order is an entitlement order: products plus payment and attribution details.
//
// Example:
//
//	order := sdk.NewOrder().
//	    SetPaymentType("FREE").
//	    SetSendConfirmationEmail(true).
//	    AddProduct(sdk.NewProduct().SetProductID("1").SetPriceID("p-1"))
//
//	resp, err := client.AddUserEntitlements(ctx, userToken, order)
type Order struct {
	products                      []*Product
	paymentType                   string
	sendConfirmationEmail         bool
	agent                         *Agent
	partnerIdentifier             string
	orderLevelPromotionIdentifier string
	caseReferenceIdentifier       string
	five9SessionIdentifier        string
	paymentTypeCode               string
	customerGroupDomainCode       string
}

// NewOrder returns an empty order that does not send a confirmation email.
func NewOrder() *Order {
	return &Order{}
}

// AddProduct appends a product. Nil products are ignored.
func (o *Order) AddProduct(p *Product) *Order {
	if p != nil {
		o.products = append(o.products, p)
	}
	return o
}

// SetPaymentType sets the payment type, e.g. "FREE"
func (o *Order) SetPaymentType(paymentType string) *Order {
	o.paymentType = paymentType
	return o
}

// SetSendConfirmationEmail controls the confirmation email. Default false.
func (o *Order) SetSendConfirmationEmail(send bool) *Order {
	o.sendConfirmationEmail = send
	return o
}

// SetAgent attaches the ordering agent
func (o *Order) SetAgent(agent *Agent) *Order {
	o.agent = agent
	return o
}

// SetPartnerIdentifier sets the partner identifier
func (o *Order) SetPartnerIdentifier(id string) *Order {
	o.partnerIdentifier = id
	return o
}

// SetOrderLevelPromotionIdentifier sets the order level promotion
func (o *Order) SetOrderLevelPromotionIdentifier(id string) *Order {
	o.orderLevelPromotionIdentifier = id
	return o
}

// SetCaseReferenceIdentifier sets the case reference
func (o *Order) SetCaseReferenceIdentifier(id string) *Order {
	o.caseReferenceIdentifier = id
	return o
}

// SetFive9SessionIdentifier sets the Five9 call session
func (o *Order) SetFive9SessionIdentifier(id string) *Order {
	o.five9SessionIdentifier = id
	return o
}

// SetPaymentTypeCode sets the order payment type code
func (o *Order) SetPaymentTypeCode(code string) *Order {
	o.paymentTypeCode = code
	return o
}

// SetCustomerGroupDomainCode sets the customer group domain
func (o *Order) SetCustomerGroupDomainCode(code string) *Order {
	o.customerGroupDomainCode = code
	return o
}

// Products returns the products in insertion order
func (o *Order) Products() []*Product { return o.products }

// FirstProduct returns the first product or nil
func (o *Order) FirstProduct() *Product {
	if len(o.products) == 0 {
		return nil
	}
	return o.products[0]
}

// HasAgent reports whether an agent is attached
func (o *Order) HasAgent() bool { return o.agent != nil }

// Agent returns the attached agent or nil
func (o *Order) Agent() *Agent { return o.agent }

// PaymentType returns the payment type
func (o *Order) PaymentType() string { return o.paymentType }

// SendConfirmationEmail reports whether a confirmation email is requested
func (o *Order) SendConfirmationEmail() bool { return o.sendConfirmationEmail }

// PartnerIdentifier returns the partner identifier
func (o *Order) PartnerIdentifier() string { return o.partnerIdentifier }

// OrderLevelPromotionIdentifier returns the order level promotion
func (o *Order) OrderLevelPromotionIdentifier() string { return o.orderLevelPromotionIdentifier }

// CaseReferenceIdentifier returns the case reference
func (o *Order) CaseReferenceIdentifier() string { return o.caseReferenceIdentifier }

// Five9SessionIdentifier returns the Five9 session
func (o *Order) Five9SessionIdentifier() string { return o.five9SessionIdentifier }

// PaymentTypeCode returns the order payment type code
func (o *Order) PaymentTypeCode() string { return o.paymentTypeCode }

// CustomerGroupDomainCode returns the customer group domain
func (o *Order) CustomerGroupDomainCode() string { return o.customerGroupDomainCode }

// ProductsJSON encodes the products as the orders list.
func (o *Order) ProductsJSON() (string, error) {
	lines := make([]productLine, 0, len(o.products))
	for _, p := range o.products {
		lines = append(lines, p.line())
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// params appends the order level form fields shared by both entitlement calls.
func (o *Order) params(params Params) Params {
	return o.agent.params(params).
		Optional("partner_identifier", o.partnerIdentifier).
		Optional("order_level_promotion_identifier", o.orderLevelPromotionIdentifier).
		Optional("case_reference_identifier", o.caseReferenceIdentifier).
		Optional("five9_session_identifier", o.five9SessionIdentifier).
		Optional("order_payment_type_code", o.paymentTypeCode).
		Optional("customer_group_domain_code", o.customerGroupDomainCode)
}

// Registration holds the fields for UserRegister. Email, FirstName,
// LastName and AcceptedTOS are always sent; the rest only when set.
type Registration struct {
	Email       string
	FirstName   string
	LastName    string
	AcceptedTOS bool

	Password     string
	PhoneNumber  string
	AddressLine1 string
	AddressLine2 string
	AddressLine3 string
	City         string
	StateCode    string
	PostalCode   string
	Source       string
}

func (r Registration) params() Params {
	return Params{}.
		Add("email", r.Email).
		Add("first_name", r.FirstName).
		Add("last_name", r.LastName).
		Add("accepted_tos", formBool(r.AcceptedTOS)).
		Optional("password", r.Password).
		Optional("phone_number", r.PhoneNumber).
		Optional("address_line_1", r.AddressLine1).
		Optional("address_line_2", r.AddressLine2).
		Optional("address_line_3", r.AddressLine3).
		Optional("city", r.City).
		Optional("state_code", r.StateCode).
		Optional("postal_code", r.PostalCode).
		Optional("source", r.Source)
}

// Email is a templated email sent through the DandB mail service.
type Email struct {
	// UserEmail is the recipient address
	UserEmail string
	// DisplayName is the recipient name
	DisplayName string
	// FolderName and CampaignName select the mail template
	FolderName   string
	CampaignName string
	// MessageID tracks the message
	MessageID string
	// Options is template data, sent JSON encoded
	Options map[string]any
}

func (e Email) params() (Params, error) {
	options := e.Options
	if options == nil {
		options = map[string]any{}
	}
	data, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return Params{}.
		Add("user_email", e.UserEmail).
		Add("display_name", e.DisplayName).
		Add("folder_name", e.FolderName).
		Add("campaign_name", e.CampaignName).
		Add("message_id", e.MessageID).
		Add("options", string(data)), nil
}

// formBool encodes a boolean the way the API reads form fields
func formBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
