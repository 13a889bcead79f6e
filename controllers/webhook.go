package controllers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	dbpkg "backoffice/db"
	"backoffice/models"
	"backoffice/tools"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

/************************************************
/**** MARK: EVOLUTION WEBHOOK ****/
/************************************************/

type EvolutionWebhookPayload struct {
	Event    string          `json:"event"`
	Instance string          `json:"instance"`
	Data     json.RawMessage `json:"data"`
}

type evolutionMessageData struct {
	Key struct {
		RemoteJid string `json:"remoteJid"`
		FromMe    bool   `json:"fromMe"`
		ID        string `json:"id"`
	} `json:"key"`
	Message struct {
		Conversation        string `json:"conversation"`
		ExtendedTextMessage struct {
			Text string `json:"text"`
		} `json:"extendedTextMessage"`
	} `json:"message"`
	MessageTimestamp int64 `json:"messageTimestamp"`
}

type evolutionConnectionData struct {
	State string `json:"state"`
}

// normalizeEvent aceita "messages.upsert" e "MESSAGES_UPSERT".
func normalizeEvent(event string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(event)), "_", ".")
}

func (h *Handlers) validWebhookToken(c *gin.Context) bool {
	expected := h.Config.Security.WebhookToken
	if expected == "" {
		return false
	}
	token := c.GetHeader("X-Webhook-Token")
	if token == "" {
		token = c.Query("token")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

// POST /api/webhook/evolution
func (h *Handlers) EvolutionWebhook(c *gin.Context) {
	if !h.validWebhookToken(c) {
		RespondError(c, "forbidden", http.StatusForbidden)
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}
	var payload EvolutionWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}

	store, ok := storeInstance(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	inst, err := store.InstanceByName(ctx, strings.TrimSpace(payload.Instance))
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}
	if inst == nil {
		log.Warn().Str("instance", payload.Instance).Str("event", payload.Event).Msg("webhook: unknown instance")
		RespondSuccess(c, gin.H{"success": true, "ignored": true})
		return
	}

	switch normalizeEvent(payload.Event) {
	case "messages.upsert":
		var data evolutionMessageData
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			RespondError(c, "invalid message data", http.StatusBadRequest)
			return
		}
		if err := h.handleEvolutionMessage(ctx, store, *inst, data); err != nil {
			log.Error().Err(err).Str("instance", inst.InstanceName).Msg("webhook: failed to store message")
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
	case "connection.update":
		var data evolutionConnectionData
		if err := json.Unmarshal(payload.Data, &data); err != nil {
			RespondError(c, "invalid connection data", http.StatusBadRequest)
			return
		}
		connected := strings.EqualFold(data.State, "open")
		if err := store.SetInstanceConnected(ctx, inst.ID, connected); err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			return
		}
		log.Info().Str("instance", inst.InstanceName).Str("state", data.State).Bool("connected", connected).Msg("webhook: connection updated")
	default:
		log.Debug().Str("event", payload.Event).Msg("webhook: event ignored")
	}
	RespondSuccess(c, gin.H{"success": true})
}

func (h *Handlers) handleEvolutionMessage(ctx context.Context, store *dbpkg.Store, inst models.WhatsAppInstance, data evolutionMessageData) error {
	jid := data.Key.RemoteJid
	// grupos e broadcasts não viram conversa
	if !strings.HasSuffix(jid, "@s.whatsapp.net") {
		return nil
	}
	body := strings.TrimSpace(data.Message.Conversation)
	if body == "" {
		body = strings.TrimSpace(data.Message.ExtendedTextMessage.Text)
	}
	if body == "" {
		return nil
	}
	at := h.now()
	if data.MessageTimestamp > 0 {
		at = time.Unix(data.MessageTimestamp, 0).UTC()
	}
	direction := models.MESSAGE_DIRECTION_INBOUND
	if data.Key.FromMe {
		direction = models.MESSAGE_DIRECTION_OUTBOUND
	}
	phone := tools.NormalizePhone(strings.TrimSuffix(jid, "@s.whatsapp.net"))
	return recordConversationMessage(ctx, store, inst, phone, data.Key.ID, direction, body, at)
}

/************************************************
/**** MARK: CLOUD API WEBHOOK ****/
/************************************************/

type CloudWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Messages []struct {
					From      string `json:"from"`
					ID        string `json:"id"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// verifyMetaSignature confere X-Hub-Signature-256 (sha256=<hex>) com o App Secret.
func verifyMetaSignature(c *gin.Context, secret string, rawBody []byte) (bool, string) {
	if secret == "" {
		return false, "missing app secret"
	}
	sig := strings.TrimSpace(c.GetHeader("X-Hub-Signature-256"))
	if sig == "" {
		return false, "missing X-Hub-Signature-256"
	}
	if !strings.HasPrefix(sig, "sha256=") {
		return false, "invalid X-Hub-Signature-256 format"
	}
	provided, err := hex.DecodeString(strings.TrimPrefix(sig, "sha256="))
	if err != nil {
		return false, "invalid signature hex"
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(rawBody)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return false, "signature mismatch"
	}
	return true, ""
}

// GET /api/webhook/cloud
func (h *Handlers) CloudWebhookVerify(c *gin.Context) {
	verifyToken := h.Config.Security.CloudVerifyToken
	if verifyToken == "" {
		RespondError(c, "verify token not set", http.StatusInternalServerError)
		return
	}
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && subtle.ConstantTimeCompare([]byte(token), []byte(verifyToken)) == 1 && challenge != "" {
		c.String(http.StatusOK, "%s", challenge)
		return
	}
	RespondError(c, "forbidden", http.StatusForbidden)
}

// POST /api/webhook/cloud
func (h *Handlers) CloudWebhookUpdate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		RespondError(c, "failed to read body", http.StatusBadRequest)
		return
	}
	if ok, reason := verifyMetaSignature(c, h.Config.Security.CloudAppSecret, raw); !ok {
		RespondError(c, "forbidden: "+reason, http.StatusForbidden)
		return
	}
	var payload CloudWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		RespondError(c, "invalid json", http.StatusBadRequest)
		return
	}
	store, ok := storeInstance(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if strings.TrimSpace(change.Field) != "messages" {
				continue
			}
			inst, err := cloudInstance(store, change.Value.Metadata.PhoneNumberID)
			if err != nil || inst == nil {
				log.Warn().Err(err).Str("phone_number_id", change.Value.Metadata.PhoneNumberID).Msg("webhook: cloud instance not found")
				continue
			}
			for _, m := range change.Value.Messages {
				body := strings.TrimSpace(m.Text.Body)
				if strings.ToLower(m.Type) != "text" || body == "" {
					continue
				}
				at := h.now()
				if sec, err := strconv.ParseInt(m.Timestamp, 10, 64); err == nil && sec > 0 {
					at = time.Unix(sec, 0).UTC()
				}
				phone := tools.NormalizePhone(m.From)
				if err := recordConversationMessage(ctx, store, *inst, phone, m.ID, models.MESSAGE_DIRECTION_INBOUND, body, at); err != nil {
					log.Error().Err(err).Str("message_id", m.ID).Msg("webhook: failed to store cloud message")
				}
			}
		}
	}
	// responde rápido pro Meta
	c.String(http.StatusOK, "EVENT_RECEIVED")
}

func cloudInstance(store *dbpkg.Store, phoneNumberID string) (*models.WhatsAppInstance, error) {
	if phoneNumberID == "" {
		return nil, nil
	}
	var inst models.WhatsAppInstance
	err := store.DB.Where("provider = ? AND phone_number_id = ?", models.PROVIDER_CLOUD, phoneNumberID).First(&inst).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// recordConversationMessage abre (ou reaproveita) a conversa do telefone e
// grava a mensagem.
func recordConversationMessage(ctx context.Context, store *dbpkg.Store, inst models.WhatsAppInstance, phone string, externalID string, direction string, body string, at time.Time) error {
	if phone == "" {
		return nil
	}
	conv, err := store.OpenConversation(ctx, inst, phone)
	if err != nil {
		return err
	}
	_, err = store.AppendConversationMessage(ctx, &models.ConversationMessage{
		ID:             models.NewID(),
		ConversationID: conv.ID,
		ExternalID:     externalID,
		Direction:      direction,
		Body:           body,
		CreatedAt:      &at,
	})
	return err
}
