package tools

import (
	"context"
	"errors"
	"fmt"

	"backoffice/models"
)

// Media descreve um anexo. Caption leva o corpo da mensagem.
type Media struct {
	Type     string // image, video, audio, document
	URL      string
	Filename string
	Caption  string
}

// Sender envia para um número já normalizado através de uma instância.
// Erros carregam o motivo textual devolvido pelo provedor; ClassifyFailure
// decide se é permanente.
type Sender interface {
	SendText(ctx context.Context, instance models.WhatsAppInstance, phone string, text string) error
	SendMedia(ctx context.Context, instance models.WhatsAppInstance, phone string, media Media) error
}

// Checker é implementado por clientes que dependem de credenciais globais.
type Checker interface {
	Configured() error
}

// Ready devolve erro quando o sender não está pronto para enviar. Senders
// sem Checker são considerados prontos.
func Ready(s Sender) error {
	if s == nil {
		return errors.New("nenhum cliente de envio configurado")
	}
	if c, ok := s.(Checker); ok {
		return c.Configured()
	}
	return nil
}

// Transport escolhe o cliente pelo provider da instância.
type Transport struct {
	Evolution Sender
	Cloud     Sender
}

func (t Transport) pick(instance models.WhatsAppInstance) (Sender, error) {
	switch instance.Provider {
	case models.PROVIDER_CLOUD:
		if t.Cloud != nil {
			return t.Cloud, nil
		}
	case models.PROVIDER_EVOLUTION, "":
		if t.Evolution != nil {
			return t.Evolution, nil
		}
	}
	return nil, fmt.Errorf("provider %q sem cliente configurado", instance.Provider)
}

// Configured falha quando nenhum cliente existe ou quando o cliente
// Evolution está sem credenciais. O cliente Cloud usa o token da instância.
func (t Transport) Configured() error {
	if t.Evolution == nil && t.Cloud == nil {
		return errors.New("nenhum cliente de envio configurado")
	}
	if t.Evolution != nil {
		if err := Ready(t.Evolution); err != nil {
			return err
		}
	}
	return nil
}

func (t Transport) SendText(ctx context.Context, instance models.WhatsAppInstance, phone string, text string) error {
	s, err := t.pick(instance)
	if err != nil {
		return err
	}
	return s.SendText(ctx, instance, phone, text)
}

func (t Transport) SendMedia(ctx context.Context, instance models.WhatsAppInstance, phone string, media Media) error {
	s, err := t.pick(instance)
	if err != nil {
		return err
	}
	return s.SendMedia(ctx, instance, phone, media)
}
