package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-warden/internal/logging"
	"go-warden/internal/workflow"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limited by discord")

const routeMemberUpdate = "PATCH /guilds/{guild}/members/{member}"

// APIError is a non-2xx answer from the Discord REST API.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("discord api: status %d", e.Status)
	}
	return fmt.Sprintf("discord api: status %d: %s (code %d)", e.Status, e.Message, e.Code)
}

type RESTConfig struct {
	BaseURL           string
	Token             string
	GuildID           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	PoolSize          int
	Dial              DialFunc
}

// RESTClient issues the member-management calls discordgo is not used for.
type RESTClient struct {
	cfg         RESTConfig
	pool        *HTTPPool
	limiter     *rate.Limiter
	rateLimiter *RateLimitMonitor
}

func NewRESTClient(cfg RESTConfig) *RESTClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 40
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &RESTClient{
		cfg:         cfg,
		pool:        NewHTTPPool(cfg.PoolSize, cfg.Timeout, cfg.Dial),
		limiter:     rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		rateLimiter: NewRateLimitMonitor(),
	}
}

// ApplyRestriction times the member out until the given instant.
func (rc *RESTClient) ApplyRestriction(ctx context.Context, target workflow.Actor, until time.Time, reason string) error {
	body, err := json.Marshal(map[string]string{
		"communication_disabled_until": until.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(rc.cfg.GuildID), url.PathEscape(target.ID))
	if err := rc.do(ctx, fasthttp.MethodPatch, routeMemberUpdate, path, body, reason); err != nil {
		return err
	}

	logging.Info("[RESTRICT] Member %s timed out until %s", target.ID, until.UTC().Format(time.RFC3339))
	return nil
}

func (rc *RESTClient) do(ctx context.Context, method, route, path string, body []byte, reason string) error {
	if !rc.rateLimiter.CanExecute(route) {
		return ErrRateLimited
	}
	if err := rc.limiter.Wait(ctx); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rc.cfg.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bot "+rc.cfg.Token)
	req.Header.SetContentType("application/json")
	if reason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.PathEscape(reason))
	}
	req.SetBody(body)

	deadline := time.Now().Add(rc.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := rc.pool.GetClient().DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	rc.rateLimiter.Update(route, resp)

	status := resp.StatusCode()
	logging.Debug("[REST] %s %s -> %d in %d ms", method, path, status, time.Since(start).Milliseconds())

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == fasthttp.StatusTooManyRequests:
		return ErrRateLimited
	}

	apiErr := &APIError{Status: status}
	_ = json.Unmarshal(resp.Body(), apiErr)
	return apiErr
}
