package clients

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/JonMunkholm/rawloader/internal/core"
)

// ConfigClient fetches column schemas from the config service.
type ConfigClient struct {
	base baseClient
}

// NewConfigClient creates a client for the config service at baseURL.
func NewConfigClient(baseURL string, timeout time.Duration) *ConfigClient {
	return &ConfigClient{base: newBaseClient("config", baseURL, timeout)}
}

// GetSchema fetches GET {base}/api/partners/{partnerID}/configs/{configID}
// and decodes it. A schema that fails validation is returned as a
// *core.SchemaError.
func (c *ConfigClient) GetSchema(ctx context.Context, partnerID int64, configID string) (core.Schema, error) {
	body, err := c.base.get(ctx, "api", "partners", strconv.FormatInt(partnerID, 10), "configs", configID)
	if errors.Is(err, ErrNotFound) {
		return core.Schema{}, fmt.Errorf("config not found: partner %d config %q: %w", partnerID, configID, err)
	}
	if err != nil {
		return core.Schema{}, err
	}

	schema, err := core.DecodeSchema(body)
	if err != nil {
		return core.Schema{}, fmt.Errorf("config %s for partner %d: %w", configID, partnerID, err)
	}
	return schema, nil
}
