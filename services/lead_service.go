package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// metaTimeLayout is the Graph API timestamp format, e.g. 2024-03-05T10:30:00+0000
const metaTimeLayout = "2006-01-02T15:04:05-0700"

// MetaWebhookPayload is the lead-ads webhook body. Only the first change of
// the first entry is processed.
type MetaWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				LeadgenID   string      `json:"leadgen_id"`
				FormID      string      `json:"form_id"`
				PageID      string      `json:"page_id"`
				AdID        string      `json:"ad_id"`
				CreatedTime json.Number `json:"created_time"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// LeadService stores ad-platform leads, deduplicated by leadgen id
type LeadService struct {
	db          *gorm.DB
	meta        *MetaClient
	verifyToken string
	notifier    *Notifier
	logger      *zap.Logger
}

// NewLeadService creates a LeadService
func NewLeadService(db *gorm.DB, meta *MetaClient, verifyToken string, notifier *Notifier, logger *zap.Logger) *LeadService {
	return &LeadService{
		db:          db,
		meta:        meta,
		verifyToken: verifyToken,
		notifier:    notifier,
		logger:      logger,
	}
}

// VerifySubscription answers the provider's subscription handshake with the
// challenge when the verify token matches
func (s *LeadService) VerifySubscription(mode, token, challenge string) (string, error) {
	if s.verifyToken == "" {
		return "", utils.NewConfigError("META_VERIFY_TOKEN is not configured")
	}
	if mode != "subscribe" || token != s.verifyToken {
		return "", utils.NewForbiddenError("VERIFICATION_FAILED", "Verification token mismatch")
	}
	return challenge, nil
}

// ProcessWebhook fetches the lead referenced by a webhook delivery and stores it
func (s *LeadService) ProcessWebhook(ctx context.Context, body []byte) (*models.Lead, error) {
	var payload MetaWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, utils.NewValidationError("INVALID_PAYLOAD", "Webhook body is not valid JSON")
	}
	if payload.Object != "page" {
		return nil, utils.NewNotFoundError("UNSUPPORTED_OBJECT", "Unsupported webhook object")
	}
	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return nil, utils.NewValidationError("INVALID_PAYLOAD", "Webhook has no lead changes")
	}
	entry := payload.Entry[0]
	change := entry.Changes[0].Value
	if change.LeadgenID == "" {
		return nil, utils.NewValidationError("INVALID_PAYLOAD", "leadgen_id is required")
	}

	metaLead, err := s.meta.GetLead(ctx, change.LeadgenID)
	if err != nil {
		return nil, err
	}

	lead := leadFromMeta(metaLead, change.FormID)
	lead.LeadgenID = change.LeadgenID
	lead.PageID = utils.FirstNonEmpty(change.PageID, entry.ID)
	lead.AdID = utils.FirstNonEmpty(metaLead.AdID, change.AdID)
	if metaLead.CreatedTime == "" {
		if unix, err := change.CreatedTime.Int64(); err == nil && unix > 0 {
			lead.CreatedTime = time.Unix(unix, 0).UTC()
		}
	}

	created, err := s.insertLead(ctx, lead)
	if err != nil {
		return nil, err
	}

	var stored models.Lead
	if err := s.db.WithContext(ctx).Where("leadgen_id = ?", lead.LeadgenID).First(&stored).Error; err != nil {
		return nil, storeErr("failed to load lead", err)
	}

	if !created {
		s.logger.Info("lead already stored", zap.String("leadgen_id", stored.LeadgenID))
		return &stored, nil
	}
	s.logger.Info("lead received", zap.String("leadgen_id", stored.LeadgenID), zap.String("form_id", stored.FormID))
	emitAfterCommit(ctx, s.notifier, s.logger, EventNewLead, stored)
	return &stored, nil
}

// SyncLeadsFromMeta pulls every lead of a form and stores the ones not seen
// before. Leads inserted before a failing page stay stored.
func (s *LeadService) SyncLeadsFromMeta(ctx context.Context, formID string) (int, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return 0, utils.NewValidationError("MISSING_FORM_ID", "formId is required")
	}

	inserted := 0
	next := s.meta.LeadsURL(formID)
	for next != "" {
		page, err := s.meta.ListLeadsPage(ctx, next)
		if err != nil {
			s.logger.Error("lead sync aborted", zap.String("form_id", formID), zap.Int("inserted", inserted), zap.Error(err))
			return inserted, err
		}
		for i := range page.Data {
			created, err := s.insertLead(ctx, leadFromMeta(&page.Data[i], formID))
			if err != nil {
				return inserted, err
			}
			if created {
				inserted++
			}
		}
		next = page.Paging.Next
	}

	s.logger.Info("leads synced", zap.String("form_id", formID), zap.Int("new_leads", inserted))
	return inserted, nil
}

// ListLeads returns a page of stored leads, newest first
func (s *LeadService) ListLeads(ctx context.Context, skip, take int) (Page[models.Lead], error) {
	skip, take = normalizePaging(skip, take)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Count(&total).Error; err != nil {
		return Page[models.Lead]{}, storeErr("failed to count leads", err)
	}

	var leads []models.Lead
	err := s.db.WithContext(ctx).
		Order("created_time DESC").
		Order("id DESC").
		Offset(skip).
		Limit(take).
		Find(&leads).Error
	if err != nil {
		return Page[models.Lead]{}, storeErr("failed to list leads", err)
	}
	return newPage(leads, total, skip, take), nil
}

// insertLead stores lead unless its leadgen id already exists. created
// reports whether a row was written.
func (s *LeadService) insertLead(ctx context.Context, lead *models.Lead) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "leadgen_id"}}, DoNothing: true}).
		Create(lead)
	if result.Error != nil {
		return false, storeErr("failed to store lead", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func leadFromMeta(m *MetaLead, formID string) *models.Lead {
	lead := &models.Lead{
		LeadgenID:    m.ID,
		FormID:       utils.FirstNonEmpty(m.FormID, formID),
		AdID:         m.AdID,
		CampaignName: m.CampaignName,
		FieldData:    datatypes.JSON("[]"),
		CreatedTime:  time.Now().UTC(),
	}
	if len(m.FieldData) > 0 {
		lead.FieldData = datatypes.JSON(m.FieldData)
	}
	if t, err := time.Parse(metaTimeLayout, m.CreatedTime); err == nil {
		lead.CreatedTime = t.UTC()
	} else if t, err := time.Parse(time.RFC3339, m.CreatedTime); err == nil {
		lead.CreatedTime = t.UTC()
	} else if unix, err := strconv.ParseInt(m.CreatedTime, 10, 64); err == nil {
		lead.CreatedTime = time.Unix(unix, 0).UTC()
	}
	return lead
}
