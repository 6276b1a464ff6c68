package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Partner is the partner service's view of an uploading partner.
type Partner struct {
	ID            int64  `json:"id"`
	PartnerName   string `json:"partnerName"`
	Type          string `json:"type,omitempty"`
	Email         string `json:"email,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

// PartnerClient fetches partners from the partner service.
type PartnerClient struct {
	base baseClient
}

// NewPartnerClient creates a client for the partner service at baseURL.
func NewPartnerClient(baseURL string, timeout time.Duration) *PartnerClient {
	return &PartnerClient{base: newBaseClient("partner", baseURL, timeout)}
}

// GetPartner fetches GET {base}/api/partners/{partnerID}.
func (c *PartnerClient) GetPartner(ctx context.Context, partnerID int64) (Partner, error) {
	body, err := c.base.get(ctx, "api", "partners", strconv.FormatInt(partnerID, 10))
	if errors.Is(err, ErrNotFound) {
		return Partner{}, fmt.Errorf("partner not found: %d: %w", partnerID, err)
	}
	if err != nil {
		return Partner{}, err
	}

	var p Partner
	if err := json.Unmarshal(body, &p); err != nil {
		return Partner{}, fmt.Errorf("partner service: decode partner %d: %w", partnerID, err)
	}
	return p, nil
}
