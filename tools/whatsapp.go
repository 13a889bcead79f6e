package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"backoffice/models"

	"github.com/goccy/go-json"
)

const defaultGraphBaseURL = "https://graph.facebook.com"
const defaultGraphApiVersion = "v24.0"

// WhatsAppClient envia pela WhatsApp Cloud API (Meta) usando as credenciais
// gravadas na própria instância.
type WhatsAppClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewWhatsAppClient(timeout time.Duration) *WhatsAppClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WhatsAppClient{BaseURL: defaultGraphBaseURL, HTTPClient: &http.Client{Timeout: timeout}}
}

func (c *WhatsAppClient) SendText(ctx context.Context, instance models.WhatsAppInstance, phone string, text string) error {
	return c.post(ctx, instance, map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              "text",
		"text": map[string]any{
			"body": text,
		},
	})
}

func (c *WhatsAppClient) SendMedia(ctx context.Context, instance models.WhatsAppInstance, phone string, media Media) error {
	mediaType := strings.ToLower(strings.TrimSpace(media.Type))
	if mediaType == "" {
		mediaType = "document"
	}
	payload := map[string]any{"link": media.URL}
	if media.Caption != "" && mediaType != "audio" {
		payload["caption"] = media.Caption
	}
	if mediaType == "document" && media.Filename != "" {
		payload["filename"] = media.Filename
	}
	return c.post(ctx, instance, map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone,
		"type":              mediaType,
		mediaType:           payload,
	})
}

func (c *WhatsAppClient) post(ctx context.Context, instance models.WhatsAppInstance, body any) error {
	phoneID := strings.TrimSpace(instance.PhoneNumberID)
	token := strings.TrimSpace(instance.AccessToken)
	if phoneID == "" || token == "" {
		return errors.New("instância cloud sem phone_number_id ou access_token")
	}
	apiVersion := strings.TrimSpace(instance.ApiVersion)
	if apiVersion == "" {
		apiVersion = defaultGraphApiVersion
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = defaultGraphBaseURL
	}
	url := fmt.Sprintf("%s/%s/%s/messages", base, apiVersion, phoneID)

	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp api error: status=%d %s body=%s", resp.StatusCode, http.StatusText(resp.StatusCode), string(raw))
	}
	return nil
}
