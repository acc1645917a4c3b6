package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// manualSKUPrefix marks cart items entered without a catalog entry
	manualSKUPrefix   = "manual-"
	yardHistoryReason = "Updated by admin"
)

// NewOrderEvent is the payload of the new_order dashboard event
type NewOrderEvent struct {
	ID            uint               `json:"id"`
	OrderNumber   string             `json:"orderNumber"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	CustomerEmail string             `json:"customerEmail"`
	Status        models.OrderStatus `json:"status"`
}

// OrderService creates and updates orders together with their customer,
// address, items, payments and yard records. Every write runs in a single
// transaction.
type OrderService struct {
	db       *gorm.DB
	notifier *Notifier
	logger   *zap.Logger
}

// NewOrderService creates an OrderService
func NewOrderService(db *gorm.DB, notifier *Notifier, logger *zap.Logger) *OrderService {
	return &OrderService{db: db, notifier: notifier, logger: logger}
}

// CreateOrder places an order. A cart SKU missing from the catalog aborts
// the whole order.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	source := models.OrderSourceStorefront
	if v, err := enumInput(in.Source, models.ParseOrderSource); err != nil {
		return nil, err
	} else if v != nil {
		source = *v
	}
	addressType := models.AddressTypeUnknown
	if v, err := enumInput(in.AddressType, models.ParseAddressType); err != nil {
		return nil, err
	} else if v != nil {
		addressType = *v
	}
	warranty, err := enumInput(in.Warranty, models.ParseWarranty)
	if err != nil {
		return nil, err
	}
	orderDate, err := utils.ParseOptionalTime("orderDate", in.OrderDate)
	if err != nil {
		return nil, err
	}

	var orderID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := findOrCreateCustomer(tx, in.CustomerInfo, in.BillingInfo)
		if err != nil {
			return err
		}

		address := models.Address{
			AddressType: addressType,
			CompanyName: resolveCompanyName(in.CompanyName, in.ShippingInfo, in.BillingInfo),
			Billing:     *in.BillingInfo,
			Shipping:    *in.ShippingInfo,
		}
		if err := tx.Create(&address).Error; err != nil {
			return storeErr("failed to create address", err)
		}

		order := models.Order{
			OrderNumber:    strings.TrimSpace(in.OrderNumber),
			Status:         models.OrderStatusPending,
			Source:         source,
			Subtotal:       in.Subtotal.Value,
			TotalAmount:    in.TotalAmount.Value,
			Taxes:          in.Taxes.Null(),
			ShippingCost:   in.ShippingCost.Null(),
			HandlingFee:    in.HandlingFee.Null(),
			ProcessingFee:  in.ProcessingFee.Null(),
			CorePrice:      in.CorePrice.Null(),
			Warranty:       warranty,
			Notes:          in.Notes,
			CarrierName:    in.CarrierName,
			TrackingNumber: in.TrackingNumber,
			CustomerNotes:  in.CustomerNotes.JSON(),
			YardNotes:      in.YardNotes.JSON(),
			BillingInfo:    snapshotJSON(in.BillingInfo),
			ShippingInfo:   snapshotJSON(in.ShippingInfo),
			OrderDate:      orderDate,
			CustomerID:     customer.ID,
			AddressID:      &address.ID,
		}
		if order.OrderDate == nil {
			now := time.Now().UTC()
			order.OrderDate = &now
		}
		if err := tx.Create(&order).Error; err != nil {
			return storeErr("failed to create order", err)
		}

		for _, item := range in.CartItems {
			orderItem, err := buildOrderItem(tx, order.ID, item)
			if err != nil {
				return err
			}
			if err := tx.Create(orderItem).Error; err != nil {
				return storeErr("failed to create order item", err)
			}
		}

		if in.PaymentInfo != nil && in.PaymentInfo.CardData != nil {
			payment, err := buildPayment(order.ID, *in.PaymentInfo, order.TotalAmount)
			if err != nil {
				return err
			}
			if err := tx.Create(payment).Error; err != nil {
				return storeErr("failed to create payment", err)
			}
		}

		if in.YardInfo != nil {
			yard := models.YardInfo{OrderID: order.ID}
			in.YardInfo.apply(&yard)
			if err := tx.Create(&yard).Error; err != nil {
				return storeErr("failed to create yard info", err)
			}
		}

		status := models.OrderStatusPending
		if in.PaymentInfo != nil {
			status = models.OrderStatusPaid
		}
		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return storeErr("failed to update order status", err)
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)),
		zap.Int("items", len(order.Items)),
	)
	emitAfterCommit(ctx, s.notifier, s.logger, EventNewOrder, NewOrderEvent{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		CustomerEmail: customerEmail(order),
		Status:        order.Status,
	})
	return order, nil
}

// UpdateOrder applies a partial patch to an order and its dependent records.
// The order row is locked first so concurrent edits of the same order run
// one after another.
func (s *OrderService) UpdateOrder(ctx context.Context, id uint, in UpdateOrderInput) (*models.Order, error) {
	status, err := enumInput(in.Status, models.ParseOrderStatus)
	if err != nil {
		return nil, err
	}
	source, err := enumInput(in.Source, models.ParseOrderSource)
	if err != nil {
		return nil, err
	}
	warranty, err := enumInput(in.Warranty, models.ParseWarranty)
	if err != nil {
		return nil, err
	}
	addressType, err := enumInput(in.AddressType, models.ParseAddressType)
	if err != nil {
		return nil, err
	}
	dates, err := parseOrderDates(in)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
		if isNotFound(err) {
			return utils.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
		}
		if err != nil {
			return storeErr("failed to load order", err)
		}

		updates := map[string]interface{}{}

		if in.CustomerInfo != nil {
			customerID, err := patchCustomer(tx, order.CustomerID, in.CustomerInfo)
			if err != nil {
				return err
			}
			if customerID != order.CustomerID {
				updates["customer_id"] = customerID
			}
		}

		if in.BillingInfo != nil || in.ShippingInfo != nil || addressType != nil || in.CompanyName != nil {
			addressID, created, err := upsertOrderAddress(tx, order.AddressID, in, addressType)
			if err != nil {
				return err
			}
			if created {
				updates["address_id"] = addressID
			}
		}
		if in.BillingInfo != nil {
			updates["billing_info"] = snapshotJSON(in.BillingInfo)
		}
		if in.ShippingInfo != nil {
			updates["shipping_info"] = snapshotJSON(in.ShippingInfo)
		}

		if in.YardInfo != nil {
			if err := upsertYardInfo(tx, order.ID, in.YardInfo); err != nil {
				return err
			}
		}

		if in.CartItems != nil {
			if err := syncOrderItems(tx, order.ID, in.CartItems); err != nil {
				return err
			}
		}

		total := order.TotalAmount
		if in.TotalAmount.Valid {
			total = in.TotalAmount.Value
		}
		if in.PaymentInfo.Set {
			if err := s.replacePayments(tx, order.ID, in.PaymentInfo.Entries, total); err != nil {
				return err
			}
		}

		if in.OrderNumber != nil && strings.TrimSpace(*in.OrderNumber) != "" {
			updates["order_number"] = strings.TrimSpace(*in.OrderNumber)
		}
		if status != nil {
			updates["status"] = *status
		}
		if source != nil {
			updates["source"] = *source
		}
		if warranty != nil {
			updates["warranty"] = *warranty
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if in.CarrierName != nil {
			updates["carrier_name"] = *in.CarrierName
		}
		if in.TrackingNumber != nil {
			updates["tracking_number"] = *in.TrackingNumber
		}
		if in.CustomerNotes.Set {
			updates["customer_notes"] = in.CustomerNotes.JSON()
		}
		if in.YardNotes.Set {
			updates["yard_notes"] = in.YardNotes.JSON()
		}
		if in.Subtotal.Valid {
			updates["subtotal"] = in.Subtotal.Value
		}
		if in.TotalAmount.Valid {
			updates["total_amount"] = in.TotalAmount.Value
		}
		for column, value := range map[string]utils.FlexDecimal{
			"taxes":          in.Taxes,
			"shipping_cost":  in.ShippingCost,
			"handling_fee":   in.HandlingFee,
			"processing_fee": in.ProcessingFee,
			"core_price":     in.CorePrice,
		} {
			if value.Valid {
				updates[column] = value.Null()
			}
		}
		for column, value := range dates {
			updates[column] = value
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return storeErr("failed to update order", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order updated", zap.Uint("order_id", id))
	return s.GetOrder(ctx, id)
}

// GetOrder loads an order with every relation the dashboard shows
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Address").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.id ASC") }).
		Preload("YardInfo").
		Preload("YardHistory", func(db *gorm.DB) *gorm.DB { return db.Order("yard_histories.id DESC") }).
		First(&order, id).Error
	if isNotFound(err) {
		return nil, utils.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
	}
	if err != nil {
		return nil, storeErr("failed to load order", err)
	}
	return &order, nil
}

// ListOrders returns a page of orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, params OrderListParams) (Page[models.Order], error) {
	skip, take := normalizePaging(params.Skip, params.Take)

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if strings.TrimSpace(params.Status) != "" {
		status, err := models.ParseOrderStatus(params.Status)
		if err != nil {
			return Page[models.Order]{}, utils.NewValidationError("INVALID_ENUM", err.Error())
		}
		query = query.Where("orders.status = ?", status)
	}
	if email := normalizeEmail(params.Email); email != "" {
		query = query.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("LOWER(customers.email) = ?", email)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.Order]{}, storeErr("failed to count orders", err)
	}

	var orders []models.Order
	err := query.
		Preload("Customer").
		Preload("Items").
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Offset(skip).
		Limit(take).
		Find(&orders).Error
	if err != nil {
		return Page[models.Order]{}, storeErr("failed to list orders", err)
	}
	return newPage(orders, total, skip, take), nil
}

// DeleteOrder soft-deletes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Order{}, id)
	if result.Error != nil {
		return storeErr("failed to delete order", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
	}
	s.logger.Info("order deleted", zap.Uint("order_id", id))
	return nil
}

// replacePayments deletes every payment on the order and inserts the
// incoming entries. Entries with no card, alternate card or method are skipped.
func (s *OrderService) replacePayments(tx *gorm.DB, orderID uint, entries []PaymentInfo, total decimal.Decimal) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&models.Payment{}).Error; err != nil {
		return storeErr("failed to delete payments", err)
	}
	for i, entry := range entries {
		if !entry.payable() {
			s.logger.Warn("skipping empty payment entry", zap.Uint("order_id", orderID), zap.Int("index", i))
			continue
		}
		payment, err := buildPayment(orderID, entry, total)
		if err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return storeErr("failed to create payment", err)
		}
	}
	return nil
}

func findOrCreateCustomer(tx *gorm.DB, info *CustomerInfo, billing *models.AddressLines) (*models.Customer, error) {
	email := normalizeEmail(info.Email)

	var customer models.Customer
	err := tx.Where("email = ?", email).First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !isNotFound(err) {
		return nil, storeErr("failed to load customer", err)
	}

	customer = models.Customer{
		Email:    email,
		FullName: info.displayName(billing),
		Phone:    info.Phone,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, storeErr("failed to create customer", err)
	}
	return &customer, nil
}

// patchCustomer applies customerInfo to the order's customer and returns the
// customer id the order should point at. A changed email that belongs to
// another customer moves the order to that customer.
func patchCustomer(tx *gorm.DB, customerID uint, info *CustomerInfo) (uint, error) {
	var current models.Customer
	if err := tx.First(&current, customerID).Error; err != nil {
		return 0, storeErr("failed to load customer", err)
	}

	email := normalizeEmail(info.Email)
	if email != "" && email != normalizeEmail(current.Email) {
		var other models.Customer
		err := tx.Where("email = ?", email).First(&other).Error
		if err == nil {
			return other.ID, nil
		}
		if !isNotFound(err) {
			return 0, storeErr("failed to load customer", err)
		}
		current.Email = email
	}

	if name := strings.TrimSpace(info.FullName); name != "" {
		current.FullName = name
	} else if name := strings.TrimSpace(info.FirstName + " " + info.LastName); name != "" {
		current.FullName = name
	}
	if info.Phone != nil {
		current.Phone = utils.StringPtr(*info.Phone)
	}
	if err := tx.Save(&current).Error; err != nil {
		return 0, storeErr("failed to update customer", err)
	}
	return current.ID, nil
}

// upsertOrderAddress updates the order's address in place, or creates one
// when the order has none. created reports whether the id is new.
func upsertOrderAddress(tx *gorm.DB, addressID *uint, in UpdateOrderInput, addressType *models.AddressType) (uint, bool, error) {
	var address models.Address
	if addressID != nil {
		err := tx.First(&address, *addressID).Error
		if err != nil && !isNotFound(err) {
			return 0, false, storeErr("failed to load address", err)
		}
	}

	if in.BillingInfo != nil {
		address.Billing = *in.BillingInfo
	}
	if in.ShippingInfo != nil {
		address.Shipping = *in.ShippingInfo
	}
	if addressType != nil {
		address.AddressType = *addressType
	}
	if address.AddressType == "" {
		address.AddressType = models.AddressTypeUnknown
	}
	if in.CompanyName != nil || in.BillingInfo != nil || in.ShippingInfo != nil {
		address.CompanyName = resolveCompanyName(in.CompanyName, &address.Shipping, &address.Billing)
	}

	if address.ID == 0 {
		if err := tx.Create(&address).Error; err != nil {
			return 0, false, storeErr("failed to create address", err)
		}
		return address.ID, true, nil
	}
	if err := tx.Save(&address).Error; err != nil {
		return 0, false, storeErr("failed to update address", err)
	}
	return address.ID, false, nil
}

// upsertYardInfo archives the current yard into history before overwriting it
func upsertYardInfo(tx *gorm.DB, orderID uint, in *YardInfoInput) error {
	var current models.YardInfo
	err := tx.Where("order_id = ?", orderID).First(&current).Error
	if isNotFound(err) {
		yard := models.YardInfo{OrderID: orderID}
		in.apply(&yard)
		if err := tx.Create(&yard).Error; err != nil {
			return storeErr("failed to create yard info", err)
		}
		return nil
	}
	if err != nil {
		return storeErr("failed to load yard info", err)
	}

	history := models.YardHistory{
		OrderID:          orderID,
		YardName:         current.YardName,
		YardPhone:        current.YardPhone,
		YardEmail:        current.YardEmail,
		ContactName:      current.ContactName,
		YardPrice:        current.YardPrice,
		YardMiles:        current.YardMiles,
		YardShippingCost: current.YardShippingCost,
		Reason:           yardHistoryReason,
	}
	if err := tx.Create(&history).Error; err != nil {
		return storeErr("failed to archive yard info", err)
	}

	in.apply(&current)
	if err := tx.Save(&current).Error; err != nil {
		return storeErr("failed to update yard info", err)
	}
	return nil
}

// syncOrderItems makes the order's items match items exactly, keyed by SKU
func syncOrderItems(tx *gorm.DB, orderID uint, items []CartItem) error {
	var existing []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&existing).Error; err != nil {
		return storeErr("failed to load order items", err)
	}
	bySKU := make(map[string]*models.OrderItem, len(existing))
	for i := range existing {
		bySKU[existing[i].SKU] = &existing[i]
	}

	keep := make([]string, 0, len(items))
	for _, item := range items {
		sku := strings.TrimSpace(item.ID)
		if sku == "" {
			return utils.NewValidationError("INVALID_CART_ITEM", "cart item id is required")
		}

		if cur, ok := bySKU[sku]; ok {
			if err := patchOrderItem(cur, item); err != nil {
				return err
			}
			if err := tx.Save(cur).Error; err != nil {
				return storeErr("failed to update order item", err)
			}
		} else {
			next, err := buildOrderItem(tx, orderID, item)
			if err != nil {
				return err
			}
			if err := tx.Create(next).Error; err != nil {
				return storeErr("failed to create order item", err)
			}
			bySKU[sku] = next
		}
		keep = append(keep, sku)
	}

	stale := tx.Where("order_id = ?", orderID)
	if len(keep) > 0 {
		stale = stale.Where("sku NOT IN ?", keep)
	}
	if err := stale.Delete(&models.OrderItem{}).Error; err != nil {
		return storeErr("failed to delete order items", err)
	}
	return nil
}

// patchOrderItem applies the fields a cart line carries to an item already on
// the order. The vehicle and part names stay as they were snapshotted.
func patchOrderItem(cur *models.OrderItem, item CartItem) error {
	if item.Quantity < 0 {
		return utils.NewValidationError("INVALID_CART_ITEM", fmt.Sprintf("invalid quantity for %s", item.ID))
	}
	if item.Quantity > 0 {
		cur.Quantity = item.Quantity
	}
	if item.Price.Valid {
		cur.UnitPrice = item.Price.Value
	}
	if name := strings.TrimSpace(item.Name); name != "" {
		cur.Name = name
	}
	if item.Specification != nil {
		cur.Specification = item.Specification
	}
	cur.LineTotal = cur.UnitPrice.Mul(decimal.NewFromInt(int64(cur.Quantity)))
	return nil
}

// buildOrderItem resolves a cart line into an OrderItem with denormalized
// vehicle and part names
func buildOrderItem(tx *gorm.DB, orderID uint, item CartItem) (*models.OrderItem, error) {
	if item.Quantity < 0 {
		return nil, utils.NewValidationError("INVALID_CART_ITEM", fmt.Sprintf("invalid quantity for %s", item.ID))
	}
	quantity := item.Quantity
	if quantity == 0 {
		quantity = 1
	}

	orderItem := &models.OrderItem{
		OrderID:       orderID,
		SKU:           strings.TrimSpace(item.ID),
		Name:          strings.TrimSpace(item.Name),
		Quantity:      quantity,
		Specification: item.Specification,
	}

	unitPrice := item.Price.OrZero()
	if isManualSKU(orderItem.SKU) {
		orderItem.YearName, orderItem.MakeName, orderItem.ModelName, orderItem.PartName = splitManualName(orderItem.Name)
	} else {
		variant, err := findVariantBySKU(tx, orderItem.SKU)
		if err != nil {
			return nil, err
		}
		orderItem.ProductVariantID = &variant.ID
		if p := variant.Product; p != nil {
			orderItem.MakeName = p.Make.Name
			orderItem.ModelName = p.Model.Name
			orderItem.YearName = strconv.Itoa(p.Year.Value)
			orderItem.PartName = p.PartType.Name
		}
		if orderItem.Specification == nil {
			orderItem.Specification = variant.Specification
		}
		if orderItem.Name == "" {
			orderItem.Name = strings.Join([]string{orderItem.YearName, orderItem.MakeName, orderItem.ModelName, orderItem.PartName}, " ")
		}
		if !item.Price.Valid {
			unitPrice = variant.Price
		}
	}

	orderItem.UnitPrice = unitPrice
	orderItem.LineTotal = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return orderItem, nil
}

func buildPayment(orderID uint, in PaymentInfo, fallbackAmount decimal.Decimal) (*models.Payment, error) {
	status := models.PaymentStatusSucceeded
	if v, err := enumInput(in.Status, models.ParsePaymentStatus); err != nil {
		return nil, err
	} else if v != nil {
		status = *v
	}

	payment := &models.Payment{
		OrderID: orderID,
		Status:  status,
		Amount:  fallbackAmount,
	}
	if in.Amount.Valid {
		payment.Amount = in.Amount.Value
	}
	if in.PaymentMethod != nil {
		payment.PaymentMethod = utils.StringPtr(*in.PaymentMethod)
	}

	if card := in.CardData; card != nil {
		expiry, err := utils.ParseCardExpiry(card.ExpirationDate)
		if err != nil {
			return nil, err
		}
		payment.CardHolderName = utils.StringPtr(card.CardHolderName)
		payment.CardBrand = utils.StringPtr(card.Brand)
		payment.CardLast4 = utils.StringPtr(utils.CardLast4(card.CardNumber))
		payment.CardExpiry = expiry
	}
	if card := in.AltCardData; card != nil {
		expiry, err := utils.ParseCardExpiry(card.ExpirationDate)
		if err != nil {
			return nil, err
		}
		payment.AltCardHolderName = utils.StringPtr(card.CardHolderName)
		payment.AltCardBrand = utils.StringPtr(card.Brand)
		payment.AltCardLast4 = utils.StringPtr(utils.CardLast4(card.CardNumber))
		payment.AltCardExpiry = expiry
	}
	return payment, nil
}

func parseOrderDates(in UpdateOrderInput) (map[string]*time.Time, error) {
	fields := []struct {
		column string
		field  string
		value  *string
	}{
		{"order_date", "orderDate", in.OrderDate},
		{"invoice_sent_at", "invoiceSentAt", in.InvoiceSentAt},
		{"invoice_confirmed_at", "invoiceConfirmedAt", in.InvoiceConfirmedAt},
		{"po_sent_at", "poSentAt", in.POSentAt},
		{"po_confirmed_at", "poConfirmedAt", in.POConfirmedAt},
	}

	dates := make(map[string]*time.Time)
	for _, f := range fields {
		t, err := utils.ParseOptionalTime(f.field, f.value)
		if err != nil {
			return nil, err
		}
		if t != nil {
			dates[f.column] = t
		}
	}
	return dates, nil
}

func isManualSKU(sku string) bool {
	return strings.HasPrefix(strings.ToLower(sku), manualSKUPrefix)
}

// splitManualName reads "YEAR MAKE MODEL PART..." or "MAKE MODEL YEAR PART...".
// Anything else becomes the part name.
func splitManualName(name string) (year, makeName, modelName, partName string) {
	tokens := strings.Fields(name)
	if len(tokens) >= 4 {
		switch {
		case isModelYear(tokens[0]):
			return tokens[0], tokens[1], tokens[2], strings.Join(tokens[3:], " ")
		case isModelYear(tokens[2]):
			return tokens[2], tokens[0], tokens[1], strings.Join(tokens[3:], " ")
		}
	}
	return "", "", "", strings.TrimSpace(name)
}

func isModelYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	year, err := strconv.Atoi(s)
	return err == nil && year >= 1900 && year <= 2100
}

func resolveCompanyName(explicit *string, shipping, billing *models.AddressLines) *string {
	if explicit != nil {
		if v := utils.StringPtr(*explicit); v != nil {
			return v
		}
	}
	candidates := make([]string, 0, 2)
	if shipping != nil {
		candidates = append(candidates, shipping.Company)
	}
	if billing != nil {
		candidates = append(candidates, billing.Company)
	}
	return utils.StringPtr(utils.FirstNonEmpty(candidates...))
}

func snapshotJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func customerEmail(order *models.Order) string {
	if order.Customer == nil {
		return ""
	}
	return order.Customer.Email
}
