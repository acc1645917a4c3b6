package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentEventEnvelope is the part of a provider event we rely on. Providers
// name the id either "id" or "eventId".
type paymentEventEnvelope struct {
	ID      string `json:"id"`
	EventID string `json:"eventId"`
	Type    string `json:"type"`
}

// PaymentWebhookService records payment provider events exactly once
type PaymentWebhookService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentWebhookService creates a PaymentWebhookService
func NewPaymentWebhookService(db *gorm.DB, logger *zap.Logger) *PaymentWebhookService {
	return &PaymentWebhookService{db: db, logger: logger}
}

// Ingest stores a provider event. A redelivered event id returns the record
// saved by the first delivery unchanged.
func (s *PaymentWebhookService) Ingest(ctx context.Context, provider string, body []byte) (*models.WebhookEvent, error) {
	var envelope paymentEventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, utils.NewValidationError("INVALID_PAYLOAD", "Webhook body is not valid JSON")
	}
	eventID := utils.FirstNonEmpty(envelope.EventID, envelope.ID)
	if eventID == "" || strings.TrimSpace(envelope.Type) == "" {
		return nil, utils.NewValidationError("INVALID_PAYLOAD", "Webhook event id and type are required")
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = "unknown"
	}

	event := models.WebhookEvent{
		Provider: provider,
		EventID:  eventID,
		Type:     strings.TrimSpace(envelope.Type),
		Payload:  datatypes.JSON(body),
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&event)
	if result.Error != nil {
		return nil, storeErr("failed to store webhook event", result.Error)
	}

	var stored models.WebhookEvent
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&stored).Error; err != nil {
		return nil, storeErr("failed to load webhook event", err)
	}

	if result.RowsAffected == 0 {
		s.logger.Info("duplicate webhook event ignored", zap.String("event_id", eventID), zap.String("provider", provider))
	} else {
		s.logger.Info("webhook event stored", zap.String("event_id", eventID), zap.String("type", stored.Type))
	}
	return &stored, nil
}
