package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReplacementInput is the sourcing plan for a replacement part. Cost fields
// left out count as zero when the plan is first created.
type ReplacementInput struct {
	YardName         *string           `json:"yardName"`
	YardPhone        *string           `json:"yardPhone"`
	YardAddress      *string           `json:"yardAddress"`
	Notes            *string           `json:"notes"`
	ReplacementPrice utils.FlexDecimal `json:"replacementPrice"`
	Taxes            utils.FlexDecimal `json:"taxes"`
	Handling         utils.FlexDecimal `json:"handling"`
	Processing       utils.FlexDecimal `json:"processing"`
	CorePrice        utils.FlexDecimal `json:"corePrice"`
	YardCost         utils.FlexDecimal `json:"yardCost"`
}

func (in *ReplacementInput) apply(r *models.ProblematicPartReplacement) {
	if in.YardName != nil {
		r.YardName = in.YardName
	}
	if in.YardPhone != nil {
		r.YardPhone = in.YardPhone
	}
	if in.YardAddress != nil {
		r.YardAddress = in.YardAddress
	}
	if in.Notes != nil {
		r.Notes = in.Notes
	}
	if in.ReplacementPrice.Valid {
		r.ReplacementPrice = in.ReplacementPrice.Value
	}
	if in.Taxes.Valid {
		r.Taxes = in.Taxes.Value
	}
	if in.Handling.Valid {
		r.Handling = in.Handling.Value
	}
	if in.Processing.Valid {
		r.Processing = in.Processing.Value
	}
	if in.CorePrice.Valid {
		r.CorePrice = in.CorePrice.Value
	}
	if in.YardCost.Valid {
		r.YardCost = in.YardCost.Value
	}
	r.RecomputeTotalBuy()
}

// ProblematicPartInput creates or patches a problematic part. Absent fields
// are left untouched on update.
type ProblematicPartInput struct {
	OrderID             *uint             `json:"orderId"`
	ProblemType         *string           `json:"problemType"`
	RequestFromCustomer *string           `json:"requestFromCustomer"`
	Description         *string           `json:"description"`
	Photos              utils.FlexJSON    `json:"photos"`
	ReturnShipping      *string           `json:"returnShipping"`
	RefundAmount        utils.FlexDecimal `json:"refundAmount"`

	DamageDescription *string `json:"damageDescription"`
	DamageLocation    *string `json:"damageLocation"`
	CarrierClaimNo    *string `json:"carrierClaimNo"`

	DefectDescription *string `json:"defectDescription"`
	DefectCategory    *string `json:"defectCategory"`
	MechanicReport    *string `json:"mechanicReport"`

	ReceivedPartDescription *string `json:"receivedPartDescription"`
	ExpectedPartDescription *string `json:"expectedPartDescription"`

	Replacement *ReplacementInput `json:"replacement"`
}

// ProblematicPartListParams filters the problematic part listing
type ProblematicPartListParams struct {
	Skip        int
	Take        int
	ProblemType string
	OrderID     uint
}

// ProblematicPartService tracks the single post-sale issue of an order
type ProblematicPartService struct {
	db       *gorm.DB
	notifier *Notifier
	logger   *zap.Logger
}

// NewProblematicPartService creates a ProblematicPartService
func NewProblematicPartService(db *gorm.DB, notifier *Notifier, logger *zap.Logger) *ProblematicPartService {
	return &ProblematicPartService{db: db, notifier: notifier, logger: logger}
}

// UpsertProblematicPartForOrder creates the order's problematic part, or
// updates it when the order already has one. created reports which happened.
func (s *ProblematicPartService) UpsertProblematicPartForOrder(ctx context.Context, in ProblematicPartInput) (part *models.ProblematicPart, created bool, err error) {
	if in.OrderID == nil || *in.OrderID == 0 || in.ProblemType == nil || strings.TrimSpace(*in.ProblemType) == "" {
		return nil, false, utils.NewValidationError("MISSING_FIELDS", "orderId and problemType are required")
	}

	var partID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		err := tx.Select("id").First(&order, *in.OrderID).Error
		if isNotFound(err) {
			return utils.NewNotFoundError("ORDER_NOT_FOUND", "Order not found")
		}
		if err != nil {
			return storeErr("failed to load order", err)
		}

		var existing models.ProblematicPart
		err = tx.Where("order_id = ?", order.ID).First(&existing).Error
		switch {
		case err == nil:
			partID = existing.ID
			return applyProblematicPart(tx, &existing, in)
		case !isNotFound(err):
			return storeErr("failed to load problematic part", err)
		}

		fresh := models.ProblematicPart{OrderID: order.ID}
		if err := applyProblematicPart(tx, &fresh, in); err != nil {
			return err
		}
		partID = fresh.ID
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	part, err = s.GetProblematicPart(ctx, partID)
	if err != nil {
		return nil, false, err
	}

	event := EventProblematicPartUpdated
	if created {
		event = EventProblematicPartCreated
	}
	s.logger.Info("problematic part saved",
		zap.Uint("id", part.ID),
		zap.Uint("order_id", part.OrderID),
		zap.Bool("created", created),
	)
	emitAfterCommit(ctx, s.notifier, s.logger, event, part)
	return part, created, nil
}

// UpdateProblematicPart patches an existing problematic part
func (s *ProblematicPartService) UpdateProblematicPart(ctx context.Context, id uint, in ProblematicPartInput) (*models.ProblematicPart, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var part models.ProblematicPart
		err := tx.First(&part, id).Error
		if isNotFound(err) {
			return utils.NewNotFoundError("PROBLEMATIC_PART_NOT_FOUND", "Problematic part not found")
		}
		if err != nil {
			return storeErr("failed to load problematic part", err)
		}
		if in.OrderID != nil && *in.OrderID != part.OrderID {
			return utils.NewValidationError("ORDER_CHANGE_NOT_ALLOWED", "orderId of a problematic part cannot be changed")
		}
		return applyProblematicPart(tx, &part, in)
	})
	if err != nil {
		return nil, err
	}

	part, err := s.GetProblematicPart(ctx, id)
	if err != nil {
		return nil, err
	}
	emitAfterCommit(ctx, s.notifier, s.logger, EventProblematicPartUpdated, part)
	return part, nil
}

// DeleteProblematicPart removes the part and its replacement plan
func (s *ProblematicPartService) DeleteProblematicPart(ctx context.Context, id uint) error {
	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var part models.ProblematicPart
		err := tx.First(&part, id).Error
		if isNotFound(err) {
			return utils.NewNotFoundError("PROBLEMATIC_PART_NOT_FOUND", "Problematic part not found")
		}
		if err != nil {
			return storeErr("failed to load problematic part", err)
		}

		if err := tx.Where("problematic_part_id = ?", part.ID).Delete(&models.ProblematicPartReplacement{}).Error; err != nil {
			return storeErr("failed to delete replacement", err)
		}
		if err := tx.Delete(&part).Error; err != nil {
			return storeErr("failed to delete problematic part", err)
		}
		orderID = part.OrderID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("problematic part deleted", zap.Uint("id", id), zap.Uint("order_id", orderID))
	emitAfterCommit(ctx, s.notifier, s.logger, EventProblematicPartDeleted, map[string]uint{
		"id":      id,
		"orderId": orderID,
	})
	return nil
}

// GetProblematicPart loads a part with its order and replacement
func (s *ProblematicPartService) GetProblematicPart(ctx context.Context, id uint) (*models.ProblematicPart, error) {
	return s.findOne(ctx, "problematic_parts.id = ?", id)
}

// GetProblematicPartByOrder loads the problematic part of an order
func (s *ProblematicPartService) GetProblematicPartByOrder(ctx context.Context, orderID uint) (*models.ProblematicPart, error) {
	return s.findOne(ctx, "problematic_parts.order_id = ?", orderID)
}

// ListProblematicParts returns a page of parts, newest first
func (s *ProblematicPartService) ListProblematicParts(ctx context.Context, params ProblematicPartListParams) (Page[models.ProblematicPart], error) {
	skip, take := normalizePaging(params.Skip, params.Take)

	query := s.db.WithContext(ctx).Model(&models.ProblematicPart{})
	if strings.TrimSpace(params.ProblemType) != "" {
		problemType, err := models.ParseProblemType(params.ProblemType)
		if err != nil {
			return Page[models.ProblematicPart]{}, utils.NewValidationError("INVALID_ENUM", err.Error())
		}
		query = query.Where("problem_type = ?", problemType)
	}
	if params.OrderID != 0 {
		query = query.Where("order_id = ?", params.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return Page[models.ProblematicPart]{}, storeErr("failed to count problematic parts", err)
	}

	var parts []models.ProblematicPart
	err := query.
		Preload("Order").
		Preload("Order.Customer").
		Preload("Replacement").
		Order("created_at DESC").
		Order("id DESC").
		Offset(skip).
		Limit(take).
		Find(&parts).Error
	if err != nil {
		return Page[models.ProblematicPart]{}, storeErr("failed to list problematic parts", err)
	}
	return newPage(parts, total, skip, take), nil
}

func (s *ProblematicPartService) findOne(ctx context.Context, where string, arg uint) (*models.ProblematicPart, error) {
	var part models.ProblematicPart
	err := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Order.Customer").
		Preload("Replacement").
		Where(where, arg).
		First(&part).Error
	if isNotFound(err) {
		return nil, utils.NewNotFoundError("PROBLEMATIC_PART_NOT_FOUND", "Problematic part not found")
	}
	if err != nil {
		return nil, storeErr("failed to load problematic part", err)
	}
	return &part, nil
}

// applyProblematicPart copies the provided fields onto part, saves it, then
// reconciles the replacement plan with the customer's request
func applyProblematicPart(tx *gorm.DB, part *models.ProblematicPart, in ProblematicPartInput) error {
	if problemType, err := enumInput(in.ProblemType, models.ParseProblemType); err != nil {
		return err
	} else if problemType != nil {
		part.ProblemType = *problemType
	}
	if request, err := enumInput(in.RequestFromCustomer, models.ParseCustomerRequest); err != nil {
		return err
	} else if request != nil {
		part.RequestFromCustomer = *request
	}

	for _, f := range []struct {
		dst **string
		src *string
	}{
		{&part.Description, in.Description},
		{&part.ReturnShipping, in.ReturnShipping},
		{&part.DamageDescription, in.DamageDescription},
		{&part.DamageLocation, in.DamageLocation},
		{&part.CarrierClaimNo, in.CarrierClaimNo},
		{&part.DefectDescription, in.DefectDescription},
		{&part.DefectCategory, in.DefectCategory},
		{&part.MechanicReport, in.MechanicReport},
		{&part.ReceivedPartDescription, in.ReceivedPartDescription},
		{&part.ExpectedPartDescription, in.ExpectedPartDescription},
	} {
		if f.src != nil {
			*f.dst = f.src
		}
	}
	if in.Photos.Set {
		part.Photos = in.Photos.JSON()
	}
	if in.RefundAmount.Valid {
		part.RefundAmount = in.RefundAmount.Null()
	}

	if err := tx.Omit("Order", "Replacement").Save(part).Error; err != nil {
		return storeErr("failed to save problematic part", err)
	}

	switch part.RequestFromCustomer {
	case models.CustomerRequestReplacement:
		if in.Replacement != nil {
			return upsertReplacement(tx, part.ID, in.Replacement)
		}
	case models.CustomerRequestRefund:
		if err := tx.Where("problematic_part_id = ?", part.ID).Delete(&models.ProblematicPartReplacement{}).Error; err != nil {
			return storeErr("failed to delete replacement", err)
		}
	}
	return nil
}

func upsertReplacement(tx *gorm.DB, partID uint, in *ReplacementInput) error {
	var replacement models.ProblematicPartReplacement
	err := tx.Where("problematic_part_id = ?", partID).First(&replacement).Error
	if err != nil && !isNotFound(err) {
		return storeErr("failed to load replacement", err)
	}

	replacement.ProblematicPartID = partID
	in.apply(&replacement)
	if err := tx.Save(&replacement).Error; err != nil {
		return storeErr("failed to save replacement", err)
	}
	return nil
}
