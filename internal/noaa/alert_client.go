package noaa

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ngmaloney/bite-forecast/internal/external"
	"github.com/ngmaloney/bite-forecast/internal/models"
)

type cacheEntry struct {
	alerts    []models.Alert
	fetchedAt time.Time
}

// AlertClient fetches active alerts by zone and caches them briefly
type AlertClient struct {
	base    *external.BaseClient
	baseURL string
	ttl     time.Duration
	now     func() time.Time
	cache   map[string]cacheEntry
	mu      sync.RWMutex
}

func newAlertClient(base *external.BaseClient, baseURL string) *AlertClient {
	return &AlertClient{
		base:    base,
		baseURL: baseURL,
		ttl:     alertCacheDuration,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

// GetActiveAlertsByZone retrieves active alerts for a forecast or marine zone
func (c *AlertClient) GetActiveAlertsByZone(ctx context.Context, zone string) ([]models.Alert, error) {
	if zone == "" {
		return []models.Alert{}, nil
	}

	c.mu.RLock()
	entry, ok := c.cache[zone]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.alerts, nil
	}

	var resp alertResponse
	url := fmt.Sprintf("%s/alerts/active/zone/%s", c.baseURL, zone)
	if err := c.base.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	alerts := make([]models.Alert, 0, len(resp.Features))
	for _, feature := range resp.Features {
		props := feature.Properties

		onset, _ := time.Parse(time.RFC3339, props.Onset)
		expires, _ := time.Parse(time.RFC3339, props.Expires)

		var areas []string
		if props.AreaDesc != "" {
			areas = append(areas, props.AreaDesc)
		}

		id := feature.ID
		if id == "" {
			id = props.ID
		}

		alerts = append(alerts, models.Alert{
			ID:          id,
			Event:       props.Event,
			Headline:    props.Headline,
			Description: props.Description,
			Severity:    models.ParseSeverity(props.Severity),
			Urgency:     models.ParseUrgency(props.Urgency),
			Certainty:   models.ParseCertainty(props.Certainty),
			Onset:       onset,
			Expires:     expires,
			Areas:       areas,
			Instruction: props.Instruction,
		})
	}

	c.mu.Lock()
	c.cache[zone] = cacheEntry{alerts: alerts, fetchedAt: c.now()}
	c.mu.Unlock()

	return alerts, nil
}

// Internal types for NWS alert responses

type alertResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			ID          string `json:"id"`
			Event       string `json:"event"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			Severity    string `json:"severity"`
			Urgency     string `json:"urgency"`
			Certainty   string `json:"certainty"`
			Onset       string `json:"onset"`
			Expires     string `json:"expires"`
			AreaDesc    string `json:"areaDesc"`
			Instruction string `json:"instruction"`
		} `json:"properties"`
	} `json:"features"`
}
