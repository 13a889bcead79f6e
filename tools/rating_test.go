package tools

import (
	"testing"
	"unicode/utf8"
)

func intPtr(n int) *int { return &n }

func TestExtractRating(t *testing.T) {
	tests := []struct {
		text string
		want *int
	}{
		{"10", intPtr(10)},
		{"  7 ", intPtr(7)},
		{"0", intPtr(0)},
		{"11", nil},
		{"nota 8", intPtr(8)},
		{"Nota 9 pontos", intPtr(9)},
		{"nota 10!", intPtr(10)},
		{"oito", intPtr(8)},
		{"Dez!", intPtr(10)},
		{"três.", intPtr(3)},
		{"dou nota 10!", intPtr(10)},
		{"daria nota 6", intPtr(6)},
		{"nota: 5", intPtr(5)},
		{"nota é 9", intPtr(9)},
		{"7 pontos", intPtr(7)},
		{"acho que 7 pontos", nil},
		{"avalio com 4", intPtr(4)},
		{"avaliação 9", intPtr(9)},
		{"obrigado", nil},
		{"", nil},
		{"oito horas", nil},
	}
	for _, tt := range tests {
		got := ExtractRating(tt.text)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ExtractRating(%q) = %d, want nil", tt.text, *got)
		case tt.want != nil && got == nil:
			t.Errorf("ExtractRating(%q) = nil, want %d", tt.text, *tt.want)
		case tt.want != nil && *got != *tt.want:
			t.Errorf("ExtractRating(%q) = %d, want %d", tt.text, *got, *tt.want)
		}
	}
}

func TestExtractRating_LongText(t *testing.T) {
	incidental := "Comprei 8 camisetas ontem e chegaram todas certinhas, valeu!"
	if n := utf8.RuneCountInString(incidental); n <= ratingShortTextLimit {
		t.Fatalf("fixture must be longer than %d runes, got %d", ratingShortTextLimit, n)
	}
	if got := ExtractRating(incidental); got != nil {
		t.Errorf("expected nil for incidental digit, got %d", *got)
	}

	explicit := "O atendimento foi bom, demorou um pouco mas eu dou nota 9 para vocês"
	got := ExtractRating(explicit)
	if got == nil || *got != 9 {
		t.Errorf("expected 9 from explicit phrase in long text, got %v", got)
	}

	incidentalPoints := "Comprei 3 pontos de luz novos e a instalação ficou perfeita, obrigado"
	if got := ExtractRating(incidentalPoints); got != nil {
		t.Errorf("expected nil for points inside a sentence, got %d", *got)
	}

	lonePoints := "A entrega foi rápida e o produto veio certinho. 10 pontos!"
	if got := ExtractRating(lonePoints); got == nil || *got != 10 {
		t.Errorf("expected 10 from a standalone points phrase, got %v", got)
	}

	wordOnly := "oito, porque o pedido demorou bastante para chegar na minha casa"
	if got := ExtractRating(wordOnly); got != nil {
		t.Errorf("number words only count in short replies, got %d", *got)
	}
}
