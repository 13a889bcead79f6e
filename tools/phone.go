package tools

import (
	"errors"
	"fmt"
	"strings"
)

const brazilDDI = "55"

var ErrEmptyPhone = errors.New("telefone vazio")

// NormalizePhone leva um telefone para o formato do WhatsApp (só dígitos,
// com DDI, sem '+').
//
// Heurística (Brasil):
// - remove tudo que não é dígito e zeros de tronco à esquerda
// - 10/11 dígitos (DDD+numero) ou sem DDI 55 -> prefixa 55
// - 12 dígitos (numero antigo de 8 dígitos) -> insere o 9 depois do DDD
//
// Entrada vazia devolve vazio.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	phone := strings.TrimLeft(b.String(), "0")
	if phone == "" {
		return ""
	}

	if len(phone) == 10 || len(phone) == 11 || !strings.HasPrefix(phone, brazilDDI) {
		phone = brazilDDI + phone
	}
	if len(phone) == 12 {
		phone = phone[:4] + "9" + phone[4:]
	}
	return phone
}

// NormalizeWhatsAppTo normaliza e valida: menos de 12 dígitos não é um
// destino válido.
func NormalizeWhatsAppTo(raw string) (string, error) {
	phone := NormalizePhone(raw)
	if phone == "" {
		return "", ErrEmptyPhone
	}
	if len(phone) < 12 {
		return "", fmt.Errorf("telefone inválido: %d dígitos", len(phone))
	}
	return phone, nil
}
