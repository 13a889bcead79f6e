package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"backoffice/metrics"
	"backoffice/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type EvolutionOptions struct {
	BaseURL         string
	ApiKey          string
	Timeout         time.Duration
	RatePerMinute   int
	BreakerFailures uint32
	BreakerOpen     time.Duration
}

// EvolutionClient fala com um gateway Evolution API. Cada instância tem seu
// próprio circuit breaker e limitador de envio.
type EvolutionClient struct {
	opts       EvolutionOptions
	httpClient *http.Client

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	limiters map[string]*rate.Limiter
}

func NewEvolutionClient(opts EvolutionOptions) *EvolutionClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerOpen <= 0 {
		opts.BreakerOpen = time.Minute
	}
	opts.BaseURL = strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	return &EvolutionClient{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		breakers:   map[string]*gobreaker.CircuitBreaker{},
		limiters:   map[string]*rate.Limiter{},
	}
}

type evolutionTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type evolutionMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
	FileName  string `json:"fileName,omitempty"`
}

func (c *EvolutionClient) SendText(ctx context.Context, instance models.WhatsAppInstance, phone string, text string) error {
	return c.send(ctx, instance.InstanceName, "sendText", evolutionTextRequest{Number: phone, Text: text})
}

func (c *EvolutionClient) SendMedia(ctx context.Context, instance models.WhatsAppInstance, phone string, media Media) error {
	mediaType := strings.ToLower(strings.TrimSpace(media.Type))
	if mediaType == "" {
		mediaType = "document"
	}
	return c.send(ctx, instance.InstanceName, "sendMedia", evolutionMediaRequest{
		Number:    phone,
		MediaType: mediaType,
		Media:     media.URL,
		Caption:   media.Caption,
		FileName:  media.Filename,
	})
}

// ErrEvolutionNotConfigured indica base url ou api key ausentes.
var ErrEvolutionNotConfigured = errors.New("evolution api não configurada")

// Configured reports whether the gateway credentials are present.
func (c *EvolutionClient) Configured() error {
	if c.opts.BaseURL == "" || c.opts.ApiKey == "" {
		return ErrEvolutionNotConfigured
	}
	return nil
}

func (c *EvolutionClient) send(ctx context.Context, instanceName string, endpoint string, body any) error {
	if err := c.Configured(); err != nil {
		return err
	}
	if strings.TrimSpace(instanceName) == "" {
		return errors.New("instância sem instance_name")
	}

	if limiter := c.limiter(instanceName); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("instance %s: rate limit: %w", instanceName, err)
		}
	}

	_, err := c.breaker(instanceName).Execute(func() (interface{}, error) {
		return nil, c.post(ctx, instanceName, endpoint, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("instance %s: %w", instanceName, err)
	}
	return err
}

func (c *EvolutionClient) post(ctx context.Context, instanceName string, endpoint string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/message/%s/%s", c.opts.BaseURL, endpoint, instanceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.opts.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("evolution %s: status=%d %s body=%s", endpoint, resp.StatusCode, http.StatusText(resp.StatusCode), string(raw))
	}
	return nil
}

func (c *EvolutionClient) breaker(instanceName string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok := c.breakers[instanceName]; ok {
		return cb
	}
	failures := c.opts.BreakerFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        instanceName,
		MaxRequests: 1,
		Timeout:     c.opts.BreakerOpen,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Payload recusado não diz nada sobre a saúde da instância.
		IsSuccessful: func(err error) bool {
			return err == nil || IsPermanent(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("instance", name).Str("from", from.String()).Str("to", to.String()).Msg("evolution: circuit breaker state changed")
			var state float64
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitBreakerClosed
			case gobreaker.StateOpen:
				state = metrics.CircuitBreakerOpen
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitBreakerHalfOpen
			}
			metrics.TransportCircuitBreakerState.WithLabelValues(name).Set(state)
		},
	})
	c.breakers[instanceName] = cb
	return cb
}

// limiter returns nil when pacing is disabled.
func (c *EvolutionClient) limiter(instanceName string) *rate.Limiter {
	if c.opts.RatePerMinute <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[instanceName]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.opts.RatePerMinute)), 1)
	c.limiters[instanceName] = l
	return l
}
