package payments

import "github.com/shopspring/decimal"

// ThreeDSInitRequest is the processor-specific authentication initialization
// request. Field names follow the processor's wire format.
type ThreeDSInitRequest struct {
	Locale          string          `json:"locale"`
	ConversationID  string          `json:"conversationId"`
	Price           decimal.Decimal `json:"price"`
	PaidPrice       decimal.Decimal `json:"paidPrice"`
	Currency        string          `json:"currency"`
	Installment     int             `json:"installment"`
	BasketID        string          `json:"basketId"`
	PaymentChannel  string          `json:"paymentChannel"`
	PaymentGroup    string          `json:"paymentGroup"`
	PaymentSource   string          `json:"paymentSource"`
	Buyer           Buyer           `json:"buyer"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	BasketItems     []BasketItem    `json:"basketItems"`
	CallbackURL     string          `json:"callbackUrl"`
}

// Buyer identifies the paying customer in the processor request.
type Buyer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	IdentityNumber      string `json:"identityNumber"`
	Email               string `json:"email"`
	GsmNumber           string `json:"gsmNumber"`
	RegistrationDate    string `json:"registrationDate"`
	LastLoginDate       string `json:"lastLoginDate"`
	RegistrationAddress string `json:"registrationAddress"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zipCode"`
	IP                  string `json:"ip"`
}

// Address is a shipping or billing address in the processor request.
type Address struct {
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode"`
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
}

// BasketItem is a basket line in the processor request.
type BasketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	Category2 string `json:"category2"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

// ThreeDSInitResponse is the processor's answer to the init call. The
// ThreeDSHTMLContent is the challenge page the browser is redirected into.
type ThreeDSInitResponse struct {
	Status             string `json:"status"`
	Locale             string `json:"locale"`
	ConversationID     string `json:"conversationId"`
	PaymentID          string `json:"paymentId"`
	ThreeDSHTMLContent string `json:"threeDSHtmlContent"`
	ErrorCode          string `json:"errorCode"`
	ErrorMessage       string `json:"errorMessage"`
}

// ThreeDSAuthRequest completes the 3DS round trip after the challenge.
type ThreeDSAuthRequest struct {
	Locale           string `json:"locale"`
	ConversationID   string `json:"conversationId"`
	PaymentID        string `json:"paymentId"`
	ConversationData string `json:"conversationData"`
}

// ThreeDSAuthResponse is the processor's authorization outcome with card
// metadata.
type ThreeDSAuthResponse struct {
	Status          string          `json:"status"`
	Locale          string          `json:"locale"`
	ConversationID  string          `json:"conversationId"`
	PaymentID       string          `json:"paymentId"`
	Price           decimal.Decimal `json:"price"`
	PaidPrice       decimal.Decimal `json:"paidPrice"`
	Installment     int             `json:"installment"`
	Currency        string          `json:"currency"`
	AuthCode        string          `json:"authCode"`
	FraudStatus     string          `json:"fraudStatus"`
	CardFamily      string          `json:"cardFamily"`
	CardAssociation string          `json:"cardAssociation"`
	CardType        string          `json:"cardType"`
	ErrorCode       string          `json:"errorCode"`
	ErrorMessage    string          `json:"errorMessage"`
}

// WebhookPayload is the normalized shape of a processor webhook delivery.
type WebhookPayload struct {
	PaymentID       string          `json:"paymentId"`
	ConversationID  string          `json:"conversationId"`
	PaymentStatus   string          `json:"paymentStatus"`
	Price           decimal.Decimal `json:"price"`
	PaidPrice       decimal.Decimal `json:"paidPrice"`
	Installment     int             `json:"installment"`
	Currency        string          `json:"currency"`
	AuthCode        string          `json:"authCode"`
	FraudStatus     string          `json:"fraudStatus"`
	CardFamily      string          `json:"cardFamily"`
	CardAssociation string          `json:"cardAssociation"`
	CardType        string          `json:"cardType"`
	ErrorCode       string          `json:"errorCode"`
	ErrorMessage    string          `json:"errorMessage"`
}

// AuthorizationResult is the provider-neutral outcome handed back to callers
// of the authorize paths.
type AuthorizationResult struct {
	PaymentUUID        string          `json:"paymentId"`
	OrderUUID          string          `json:"orderId"`
	ProcessorPaymentID string          `json:"processorPaymentId"`
	ConversationID     string          `json:"conversationId"`
	Status             string          `json:"status"`
	PaidPrice          decimal.Decimal `json:"paidPrice"`
	Currency           string          `json:"currency"`
	AuthCode           string          `json:"authCode"`
	ErrorCode          string          `json:"errorCode"`
	ErrorMessage       string          `json:"errorMessage"`
}

// InitResult is the normalized outcome of a 3DS initialization.
type InitResult struct {
	PaymentUUID     string `json:"paymentId"`
	ConversationID  string `json:"conversationId"`
	RedirectContent string `json:"redirectContent"`
	Status          string `json:"status"`
}
