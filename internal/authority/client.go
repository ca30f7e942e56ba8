package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"backend/internal/models"
)

// Record is one official act as returned by the upstream open-data API.
type Record struct {
	ExternalRef string    `json:"external_ref"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Position    string    `json:"position"`
	Date        time.Time `json:"date"`
}

// upstream action types to ours; anything unknown maps to a question, the
// lowest-weight activity.
var typeMapping = map[string]string{
	"scrutin":     models.ActionTypeVote,
	"vote":        models.ActionTypeVote,
	"proposition": models.ActionTypeBill,
	"bill":        models.ActionTypeBill,
	"amendement":  models.ActionTypeAmendment,
	"amendment":   models.ActionTypeAmendment,
	"debat":       models.ActionTypeDebate,
	"debate":      models.ActionTypeDebate,
	"question":    models.ActionTypeQuestion,
}

// MapActionType normalizes an upstream record type.
func MapActionType(upstream string) string {
	if mapped, ok := typeMapping[upstream]; ok {
		return mapped
	}
	return models.ActionTypeQuestion
}

// Client fetches politicians' recorded official acts from the upstream
// authority. Calls are rate-limited with explicit inter-call delays and carry
// a hard timeout; a slow upstream fails the call rather than hanging a batch.
type Client struct {
	votesURL      string
	activitiesURL string
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        *zap.Logger
}

// NewClient creates a new authority API client.
func NewClient(votesURL, activitiesURL string, requestsPerSec float64, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		votesURL:      votesURL,
		activitiesURL: activitiesURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		logger:  logger,
	}
}

// FetchVotes fetches the politician's vote records declared since the given
// time.
func (c *Client) FetchVotes(ctx context.Context, politicianRef string, since time.Time) ([]Record, error) {
	return c.fetch(ctx, c.votesURL, politicianRef, since)
}

// FetchActivities fetches the politician's non-vote activity records (bills,
// amendments, debates, questions).
func (c *Client) FetchActivities(ctx context.Context, politicianRef string, since time.Time) ([]Record, error) {
	return c.fetch(ctx, c.activitiesURL, politicianRef, since)
}

func (c *Client) fetch(ctx context.Context, baseURL, politicianRef string, since time.Time) ([]Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait interrupted: %w", err)
	}

	endpoint := fmt.Sprintf("%s?politician=%s&since=%s", baseURL,
		url.QueryEscape(politicianRef), url.QueryEscape(since.Format("2006-01-02")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach upstream authority", zap.Error(err), zap.String("politician_ref", politicianRef))
		return nil, fmt.Errorf("failed to reach upstream authority: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Upstream authority returned non-OK status",
			zap.Int("status", resp.StatusCode), zap.String("politician_ref", politicianRef))
		return nil, fmt.Errorf("upstream authority returned status: %d", resp.StatusCode)
	}

	var response struct {
		Records []Record `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}

	c.logger.Info("Fetched records from upstream authority",
		zap.String("politician_ref", politicianRef), zap.Int("count", len(response.Records)))
	return response.Records, nil
}
