package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"
	OrderStatusPaid        OrderStatus = "PAID"
	OrderStatusProcessing  OrderStatus = "PROCESSING"
	OrderStatusYardLocated OrderStatus = "YARD_LOCATED"
	OrderStatusPOSent      OrderStatus = "PO_SENT"
	OrderStatusPOConfirmed OrderStatus = "PO_CONFIRMED"
	OrderStatusShipped     OrderStatus = "SHIPPED"
	OrderStatusDelivered   OrderStatus = "DELIVERED"
	OrderStatusCompleted   OrderStatus = "COMPLETED"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
	OrderStatusRefunded    OrderStatus = "REFUNDED"
	OrderStatusReturned    OrderStatus = "RETURNED"
)

// OrderSource records where an order was entered
type OrderSource string

const (
	OrderSourceStorefront OrderSource = "STOREFRONT"
	OrderSourceAdmin      OrderSource = "ADMIN"
)

// AddressType tags a shipping destination
type AddressType string

const (
	AddressTypeResidential AddressType = "RESIDENTIAL"
	AddressTypeCommercial  AddressType = "COMMERCIAL"
	AddressTypeUnknown     AddressType = "UNKNOWN"
)

// Warranty is the coverage sold with a part
type Warranty string

const (
	WarrantyNone    Warranty = "NO_WARRANTY"
	Warranty30Days  Warranty = "30_DAYS"
	Warranty60Days  Warranty = "60_DAYS"
	Warranty90Days  Warranty = "90_DAYS"
	Warranty6Months Warranty = "6_MONTHS"
	Warranty1Year   Warranty = "1_YEAR"
)

// PaymentStatus is the settlement state of a payment row
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// ProblemType categorizes a post-sale issue
type ProblemType string

const (
	ProblemTypeDamaged      ProblemType = "DAMAGED"
	ProblemTypeDefective    ProblemType = "DEFECTIVE"
	ProblemTypeWrongProduct ProblemType = "WRONG_PRODUCT"
)

// CustomerRequest is the resolution a customer asks for on a problematic part
type CustomerRequest string

const (
	CustomerRequestReplacement CustomerRequest = "Replacement"
	CustomerRequestRefund      CustomerRequest = "Refund"
)

var (
	orderStatuses = []OrderStatus{
		OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusYardLocated,
		OrderStatusPOSent, OrderStatusPOConfirmed, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded, OrderStatusReturned,
	}
	orderSources    = []OrderSource{OrderSourceStorefront, OrderSourceAdmin}
	addressTypes    = []AddressType{AddressTypeResidential, AddressTypeCommercial, AddressTypeUnknown}
	warranties      = []Warranty{WarrantyNone, Warranty30Days, Warranty60Days, Warranty90Days, Warranty6Months, Warranty1Year}
	problemTypes    = []ProblemType{ProblemTypeDamaged, ProblemTypeDefective, ProblemTypeWrongProduct}
	paymentStatuses = []PaymentStatus{PaymentStatusSucceeded, PaymentStatusPending, PaymentStatusFailed, PaymentStatusRefunded}
)

// EnumError is returned when free text does not name a known enum value
type EnumError struct {
	Field string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// NormalizeEnumText upper-cases the input and turns spaces and hyphens into
// underscores, so "po sent" and "Po-Sent" both become "PO_SENT".
func NormalizeEnumText(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

func parseEnum[T ~string](field, raw string, allowed []T) (T, error) {
	normalized := T(NormalizeEnumText(raw))
	for _, v := range allowed {
		if v == normalized {
			return v, nil
		}
	}
	return "", &EnumError{Field: field, Value: raw}
}

// ParseOrderStatus maps free text to an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	return parseEnum("status", s, orderStatuses)
}

// ParseOrderSource maps free text to an OrderSource
func ParseOrderSource(s string) (OrderSource, error) {
	return parseEnum("source", s, orderSources)
}

// ParseAddressType maps free text to an AddressType
func ParseAddressType(s string) (AddressType, error) {
	return parseEnum("addressType", s, addressTypes)
}

// ParseWarranty maps free text to a Warranty
func ParseWarranty(s string) (Warranty, error) {
	return parseEnum("warranty", s, warranties)
}

// ParseProblemType maps free text to a ProblemType
func ParseProblemType(s string) (ProblemType, error) {
	return parseEnum("problemType", s, problemTypes)
}

// ParsePaymentStatus maps free text to a PaymentStatus
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	return parseEnum("paymentStatus", s, paymentStatuses)
}

// ParseCustomerRequest accepts "replacement" or "refund" in any case
func ParseCustomerRequest(s string) (CustomerRequest, error) {
	switch NormalizeEnumText(s) {
	case "REPLACEMENT":
		return CustomerRequestReplacement, nil
	case "REFUND":
		return CustomerRequestRefund, nil
	}
	return "", &EnumError{Field: "requestFromCustomer", Value: s}
}
