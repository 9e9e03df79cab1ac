// Package validate holds the input predicates shared by the conversation flows.
// All comparisons are case and diacritic insensitive.
package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/centromex/food-rescue-bot/internal/textnorm"
)

var (
	reserved    = set("menu", "voltar", "reiniciar", "m")
	menuOptions = set("1", "2", "3", "4")
	yesTokens   = set("sim", "s", "yes", "✅", "ok", "correto", "confirmar", "confirmo")
	noTokens    = set("nao", "n", "❌", "nao consigo", "recusar", "cancela")
	cancelWords = set("cancelar", "c", "cancel", "❌")
	editWords   = set("editar", "voltar")
)

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func in(m map[string]struct{}, text string) bool {
	_, ok := m[textnorm.Fold(text)]
	return ok
}

// IsMenuOption reports a bare menu digit 1-4.
func IsMenuOption(text string) bool { return in(menuOptions, text) }

// IsReserved reports navigation words that must never be stored as data.
func IsReserved(text string) bool { return in(reserved, text) }

func IsYes(text string) bool    { return in(yesTokens, text) }
func IsNo(text string) bool     { return in(noTokens, text) }
func IsCancel(text string) bool { return in(cancelWords, text) }
func IsEdit(text string) bool   { return in(editWords, text) }

// IsValidName accepts names of at least 3 characters that are not numbers,
// reserved words or menu digits.
func IsValidName(text string) bool {
	cleaned := strings.TrimSpace(text)
	if utf8.RuneCountInString(cleaned) < 3 {
		return false
	}
	if isDigits(cleaned) {
		return false
	}
	return !IsReserved(cleaned) && !IsMenuOption(cleaned)
}

// IsFieldValue is the generic acceptance rule for free-text fields: long
// enough, and neither a reserved word nor a bare menu digit.
func IsFieldValue(text string, minLen int) bool {
	cleaned := strings.TrimSpace(text)
	if utf8.RuneCountInString(cleaned) < minLen {
		return false
	}
	return !IsReserved(cleaned) && !IsMenuOption(cleaned)
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
