package matchingclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chaski/internal/admin/application/ports/out"
	"chaski/internal/shared/auth"
	"chaski/internal/shared/logger"
)

// Client вызывает matching сервис по HTTP. Для авторизации
// подписывает служебный JWT тем же секретом, что и остальные сервисы.
type Client struct {
	baseURL string
	http    *http.Client
	jwt     *auth.JWTService
	log     *logger.Logger
}

// NewClient создает новый клиент matching сервиса
func NewClient(baseURL string, jwt *auth.JWTService, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		jwt:     jwt,
		log:     log,
	}
}

// RunMatchingJob запускает matching job и возвращает его сводку
func (c *Client) RunMatchingJob(ctx context.Context, force bool, lookbackHours int) (*out.MatchingRunSummary, error) {
	params := url.Values{}
	if force {
		params.Set("force", "true")
	}
	if lookbackHours > 0 {
		params.Set("lookback_hours", strconv.Itoa(lookbackHours))
	}
	endpoint := c.baseURL + "/matching/run"
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	token, err := c.jwt.GenerateToken("admin-service", "service@chaski", "admin")
	if err != nil {
		return nil, fmt.Errorf("sign service token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call matching service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read matching response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error(logger.Entry{
			Action:  "matching_run_failed",
			Message: fmt.Sprintf("status=%d body=%s", resp.StatusCode, body),
		})
		if resp.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("matching job already running")
		}
		return nil, fmt.Errorf("matching service returned status %d", resp.StatusCode)
	}

	var summary out.MatchingRunSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("parse matching response: %w", err)
	}
	return &summary, nil
}
