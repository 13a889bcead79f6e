package tools

import "strings"

// FailureKind separa falhas que adianta tentar de novo das que não adianta.
type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailurePermanent
)

func (k FailureKind) String() string {
	if k == FailurePermanent {
		return "permanent"
	}
	return "transient"
}

// permanentFailurePatterns: o destinatário ou o payload foi recusado pelo
// transporte. Trocar de canal não resolve.
var permanentFailurePatterns = []string{
	"bad request",
	"telefone inválido",
	"telefone invalido",
	"número não registrado",
	"numero nao registrado",
	"not on whatsapp",
	`exists":false`,
}

// ClassifyFailure is case-insensitive; anything not in the table is transient.
func ClassifyFailure(text string) FailureKind {
	lower := strings.ToLower(text)
	for _, p := range permanentFailurePatterns {
		if strings.Contains(lower, p) {
			return FailurePermanent
		}
	}
	return FailureTransient
}

// IsPermanent classifies an error by its text. nil is never permanent.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return ClassifyFailure(err.Error()) == FailurePermanent
}
