package tools

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Textos maiores que isso são conversa, não resposta de pesquisa: só frases
// explícitas de nota contam.
const ratingShortTextLimit = 50

var (
	bareNumberPattern = regexp.MustCompile(`^(10|[0-9])$`)
	notaPattern       = regexp.MustCompile(`^nota\s*(10|[0-9])\s*(?:pontos?)?\s*[!.]?$`)
	numberWordPattern = regexp.MustCompile(`^(zero|um|uma|dois|duas|três|tres|quatro|cinco|seis|sete|oito|nove|dez)\s*[!.]?$`)

	ratingPhrasePatterns = []*regexp.Regexp{
		regexp.MustCompile(`nota\s*(?:é|e|:)\s*(10|[0-9])(?:[^0-9]|$)`),
		regexp.MustCompile(`(?:dou|daria)\s+(?:uma\s+)?nota\s*(10|[0-9])(?:[^0-9]|$)`),
		// "N pontos" só vale como frase isolada: início do texto ou após pontuação,
		// terminando em pontuação ou fim do texto.
		regexp.MustCompile(`(?:^|[.!?,;:]\s*)(10|[0-9])\s*pontos?\s*(?:[.!?,;]|$)`),
		regexp.MustCompile(`avalio\s+com\s+(10|[0-9])(?:[^0-9]|$)`),
		regexp.MustCompile(`avalia[çc][ãa]o\s*(?:com\s+|de\s+|:\s*|é\s+)?(10|[0-9])(?:[^0-9]|$)`),
	}
)

var numberWords = map[string]int{
	"zero": 0, "um": 1, "uma": 1, "dois": 2, "duas": 2, "três": 3, "tres": 3,
	"quatro": 4, "cinco": 5, "seis": 6, "sete": 7, "oito": 8, "nove": 9, "dez": 10,
}

// ExtractRating tenta achar uma nota 0-10 numa resposta livre.
// A primeira regra que casar ganha; nil quando nenhuma casa.
func ExtractRating(text string) *int {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil
	}

	if utf8.RuneCountInString(t) > ratingShortTextLimit {
		return matchRatingPhrase(t)
	}

	if m := bareNumberPattern.FindStringSubmatch(t); m != nil {
		return atoiRating(m[1])
	}
	if m := notaPattern.FindStringSubmatch(t); m != nil {
		return atoiRating(m[1])
	}
	if r := matchRatingPhrase(t); r != nil {
		return r
	}
	if m := numberWordPattern.FindStringSubmatch(t); m != nil {
		n := numberWords[m[1]]
		return &n
	}
	return nil
}

func matchRatingPhrase(t string) *int {
	for _, re := range ratingPhrasePatterns {
		if m := re.FindStringSubmatch(t); m != nil {
			return atoiRating(m[1])
		}
	}
	return nil
}

func atoiRating(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 10 {
		return nil
	}
	return &n
}
