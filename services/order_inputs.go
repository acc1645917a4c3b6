package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
)

// CustomerInfo identifies the buyer on an order
type CustomerInfo struct {
	Email     string  `json:"email" binding:"omitempty,email"`
	FullName  string  `json:"fullName"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
}

// displayName picks the best available name for a new customer
func (c *CustomerInfo) displayName(billing *models.AddressLines) string {
	if name := strings.TrimSpace(c.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	if billing != nil {
		if name := strings.TrimSpace(billing.FirstName + " " + billing.LastName); name != "" {
			return name
		}
	}
	return c.Email
}

// CartItem is one line of a cart. ID carries the variant SKU, or a
// "manual-" prefixed key for parts entered without a catalog entry.
type CartItem struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Quantity      int               `json:"quantity" binding:"gte=0"`
	Price         utils.FlexDecimal `json:"price"`
	Specification *string           `json:"specification"`
}

// CardData is card information as entered by the customer. Only the holder
// name, brand, last four digits and expiry are persisted.
type CardData struct {
	CardHolderName string `json:"cardHolderName"`
	CardNumber     string `json:"cardNumber"`
	ExpirationDate string `json:"expirationDate"`
	CVV            string `json:"cvv"`
	Brand          string `json:"brand"`
}

// PaymentInfo is one payment entry on an order
type PaymentInfo struct {
	CardData      *CardData         `json:"cardData"`
	AltCardData   *CardData         `json:"alternateCardData"`
	PaymentMethod *string           `json:"paymentMethod"`
	Amount        utils.FlexDecimal `json:"amount"`
	Status        *string           `json:"status"`
}

// payable reports whether the entry carries anything worth recording
func (p PaymentInfo) payable() bool {
	return p.CardData != nil || p.AltCardData != nil ||
		(p.PaymentMethod != nil && strings.TrimSpace(*p.PaymentMethod) != "")
}

// PaymentInfoList accepts a single payment object or an array of them.
// Set is false when the field was absent or null.
type PaymentInfoList struct {
	Entries []PaymentInfo
	Set     bool
}

func (l *PaymentInfoList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = PaymentInfoList{}
		return nil
	}
	if data[0] == '[' {
		var entries []PaymentInfo
		if err := decodeStrict(data, &entries); err != nil {
			return err
		}
		*l = PaymentInfoList{Entries: entries, Set: true}
		return nil
	}
	var single PaymentInfo
	if err := decodeStrict(data, &single); err != nil {
		return err
	}
	*l = PaymentInfoList{Entries: []PaymentInfo{single}, Set: true}
	return nil
}

// decodeStrict rejects unknown keys the way the request binder does
func decodeStrict(data []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (l PaymentInfoList) MarshalJSON() ([]byte, error) {
	if !l.Set {
		return []byte("null"), nil
	}
	return json.Marshal(l.Entries)
}

// YardInfoInput is the supplier yard sourcing the part
type YardInfoInput struct {
	YardName         *string         `json:"yardName"`
	YardAddress      *string         `json:"yardAddress"`
	YardPhone        *string         `json:"yardPhone"`
	YardEmail        *string         `json:"yardEmail"`
	ContactName      *string         `json:"contactName"`
	YardPrice        utils.FlexFloat `json:"yardPrice"`
	YardMiles        utils.FlexFloat `json:"yardMiles"`
	YardShippingCost utils.FlexFloat `json:"yardShippingCost"`
	YardShippingType *string         `json:"yardShippingType"`
	YardWarranty     *string         `json:"yardWarranty"`
	ShippingDetails  utils.FlexJSON  `json:"shippingDetails"`
}

// apply copies the provided fields onto y
func (in *YardInfoInput) apply(y *models.YardInfo) {
	setString(&y.YardName, in.YardName)
	setString(&y.YardAddress, in.YardAddress)
	setString(&y.YardPhone, in.YardPhone)
	setString(&y.YardEmail, in.YardEmail)
	setString(&y.ContactName, in.ContactName)
	setString(&y.YardShippingType, in.YardShippingType)
	setString(&y.YardWarranty, in.YardWarranty)
	if in.YardPrice.Valid {
		y.YardPrice = in.YardPrice.Value
	}
	if in.YardMiles.Valid {
		y.YardMiles = in.YardMiles.Value
	}
	if in.YardShippingCost.Valid {
		y.YardShippingCost = in.YardShippingCost.Value
	}
	if in.ShippingDetails.Set {
		y.ShippingDetails = in.ShippingDetails.JSON()
	}
}

// OrderFees are the optional money fields shared by create and update
type OrderFees struct {
	Taxes         utils.FlexDecimal `json:"taxes"`
	ShippingCost  utils.FlexDecimal `json:"shippingCost"`
	HandlingFee   utils.FlexDecimal `json:"handlingFee"`
	ProcessingFee utils.FlexDecimal `json:"processingFee"`
	CorePrice     utils.FlexDecimal `json:"corePrice"`
}

// CreateOrderInput is the checkout (or admin order-entry) payload
type CreateOrderInput struct {
	OrderNumber  string               `json:"orderNumber"`
	CustomerInfo *CustomerInfo        `json:"customerInfo"`
	BillingInfo  *models.AddressLines `json:"billingInfo"`
	ShippingInfo *models.AddressLines `json:"shippingInfo"`
	CartItems    []CartItem           `json:"cartItems" binding:"dive"`
	PaymentInfo  *PaymentInfo         `json:"paymentInfo"`
	TotalAmount  utils.FlexDecimal    `json:"totalAmount"`
	Subtotal     utils.FlexDecimal    `json:"subtotal"`
	OrderFees

	Source         *string        `json:"source"`
	AddressType    *string        `json:"addressType"`
	CompanyName    *string        `json:"companyName"`
	Warranty       *string        `json:"warranty"`
	Notes          *string        `json:"notes"`
	CustomerNotes  utils.FlexJSON `json:"customerNotes"`
	YardNotes      utils.FlexJSON `json:"yardNotes"`
	YardInfo       *YardInfoInput `json:"yardInfo"`
	OrderDate      *string        `json:"orderDate"`
	CarrierName    *string        `json:"carrierName"`
	TrackingNumber *string        `json:"trackingNumber"`
}

// Validate reports every missing required field at once
func (in *CreateOrderInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.OrderNumber) == "" {
		missing = append(missing, "orderNumber")
	}
	if in.CustomerInfo == nil || strings.TrimSpace(in.CustomerInfo.Email) == "" {
		missing = append(missing, "customerInfo.email")
	}
	if in.BillingInfo == nil {
		missing = append(missing, "billingInfo")
	}
	if in.ShippingInfo == nil {
		missing = append(missing, "shippingInfo")
	}
	if len(in.CartItems) == 0 {
		missing = append(missing, "cartItems")
	}
	if in.PaymentInfo == nil {
		missing = append(missing, "paymentInfo")
	}
	if !in.TotalAmount.Valid {
		missing = append(missing, "totalAmount")
	}
	if !in.Subtotal.Valid {
		missing = append(missing, "subtotal")
	}
	if len(missing) > 0 {
		return utils.NewValidationError("MISSING_FIELDS",
			fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
	}
	for i, item := range in.CartItems {
		if strings.TrimSpace(item.ID) == "" {
			return utils.NewValidationError("INVALID_CART_ITEM", fmt.Sprintf("cartItems[%d].id is required", i))
		}
	}
	return nil
}

// UpdateOrderInput is a partial order patch. Absent fields are left untouched.
type UpdateOrderInput struct {
	OrderNumber  *string              `json:"orderNumber"`
	Status       *string              `json:"status"`
	Source       *string              `json:"source"`
	Warranty     *string              `json:"warranty"`
	AddressType  *string              `json:"addressType"`
	CompanyName  *string              `json:"companyName"`
	CustomerInfo *CustomerInfo        `json:"customerInfo"`
	BillingInfo  *models.AddressLines `json:"billingInfo"`
	ShippingInfo *models.AddressLines `json:"shippingInfo"`
	CartItems    []CartItem           `json:"cartItems" binding:"dive"`
	PaymentInfo  PaymentInfoList      `json:"paymentInfo"`
	YardInfo     *YardInfoInput       `json:"yardInfo"`
	TotalAmount  utils.FlexDecimal    `json:"totalAmount"`
	Subtotal     utils.FlexDecimal    `json:"subtotal"`
	OrderFees

	Notes          *string        `json:"notes"`
	CarrierName    *string        `json:"carrierName"`
	TrackingNumber *string        `json:"trackingNumber"`
	CustomerNotes  utils.FlexJSON `json:"customerNotes"`
	YardNotes      utils.FlexJSON `json:"yardNotes"`

	OrderDate          *string `json:"orderDate"`
	InvoiceSentAt      *string `json:"invoiceSentAt"`
	InvoiceConfirmedAt *string `json:"invoiceConfirmedAt"`
	POSentAt           *string `json:"poSentAt"`
	POConfirmedAt      *string `json:"poConfirmedAt"`
}

// OrderListParams filters the admin order listing
type OrderListParams struct {
	Skip   int
	Take   int
	Status string
	Email  string
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// enumInput parses an optional enum field, turning unknown text into a
// ValidationError
func enumInput[T ~string](raw *string, parse func(string) (T, error)) (*T, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	v, err := parse(*raw)
	if err != nil {
		return nil, utils.NewValidationError("INVALID_ENUM", err.Error())
	}
	return &v, nil
}
