package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kendall-kelly/autoparts-api/config"
	"github.com/kendall-kelly/autoparts-api/utils"
)

const (
	metaLeadFields = "id,created_time,field_data,form_id,ad_id,campaign_name"
	metaPageSize   = 100
)

// MetaLead is a lead as returned by the Graph API
type MetaLead struct {
	ID           string          `json:"id"`
	CreatedTime  string          `json:"created_time"`
	FieldData    json.RawMessage `json:"field_data"`
	FormID       string          `json:"form_id"`
	AdID         string          `json:"ad_id"`
	CampaignName string          `json:"campaign_name"`
}

// MetaLeadsPage is one page of a form's leads
type MetaLeadsPage struct {
	Data   []MetaLead `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type metaErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// MetaClient talks to the Meta Graph API for lead ads
type MetaClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewMetaClient creates a MetaClient from the META_* settings
func NewMetaClient(cfg *config.Config) *MetaClient {
	return &MetaClient{
		baseURL:     cfg.MetaGraphURL,
		accessToken: cfg.MetaAccessToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetLead fetches a single lead by its leadgen id
func (c *MetaClient) GetLead(ctx context.Context, leadgenID string) (*MetaLead, error) {
	if c.accessToken == "" {
		return nil, utils.NewConfigError("META_ACCESS_TOKEN is not configured")
	}

	query := url.Values{}
	query.Set("access_token", c.accessToken)
	query.Set("fields", metaLeadFields)
	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, url.PathEscape(leadgenID), query.Encode())

	var lead MetaLead
	if err := c.get(ctx, endpoint, &lead, false); err != nil {
		return nil, err
	}
	return &lead, nil
}

// LeadsURL is the first page of a form's leads
func (c *MetaClient) LeadsURL(formID string) string {
	query := url.Values{}
	query.Set("access_token", c.accessToken)
	query.Set("fields", metaLeadFields)
	query.Set("limit", fmt.Sprint(metaPageSize))
	return fmt.Sprintf("%s/%s/leads?%s", c.baseURL, url.PathEscape(formID), query.Encode())
}

// ListLeadsPage fetches one page. pageURL is LeadsURL or a previous page's
// paging.next cursor.
func (c *MetaClient) ListLeadsPage(ctx context.Context, pageURL string) (*MetaLeadsPage, error) {
	if c.accessToken == "" {
		return nil, utils.NewConfigError("META_ACCESS_TOKEN is not configured")
	}

	var page MetaLeadsPage
	if err := c.get(ctx, pageURL, &page, true); err != nil {
		return nil, err
	}
	return &page, nil
}

// get decodes a JSON response into out. Non-2xx responses become
// UpstreamErrors carrying the status text, or the provider's own error
// message when preferProviderMessage is set and the body has one.
func (c *MetaClient) get(ctx context.Context, endpoint string, out interface{}, preferProviderMessage bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.NewUpstreamError("failed to reach Meta API", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return utils.NewUpstreamError("failed to read Meta API response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := resp.Status
		if preferProviderMessage {
			var metaErr metaErrorBody
			if json.Unmarshal(body, &metaErr) == nil && metaErr.Error.Message != "" {
				message = metaErr.Error.Message
			}
		}
		return utils.NewUpstreamError(message, fmt.Errorf("meta api returned %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return utils.NewUpstreamError("invalid Meta API response", err)
	}
	return nil
}
