package conversation

import (
	"strings"
	"unicode"

	"github.com/centromex/food-rescue-bot/internal/textnorm"
)

const (
	promptFoodType     = "🍽️ Que tipo de comida você quer doar?\n(ex: arroz, marmitas, pães, frutas)"
	promptOrgName      = "🏢 Qual o NOME da sua organização ou projeto?"
	promptSeekItem     = "🍽️ Do que você precisa?\n(ex: marmita, cesta básica, pão)"
	promptVolunteerReg = "🙋 Em qual REGIÃO você pode atuar?\n(ex: Centro, Zona Sul)"
)

// menuChoice starts a flow from a digit, keycap emoji or keyword.
func (e *Engine) menuChoice(t *turn) (transition, error) {
	words := strings.FieldsFunc(textnorm.Fold(t.text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	switch {
	case isOption(t.text, "1") || containsAny(words, "doar", "doac"):
		t.reply(promptFoodType)
		return restart(StepDonateFoodType), nil
	case isOption(t.text, "2") || hasWord(words, "ong", "organizacao", "projeto"):
		t.reply(promptOrgName)
		return restart(StepOrgName), nil
	case isOption(t.text, "3") || hasWord(words, "preciso", "comida", "fome"):
		t.reply(promptSeekItem)
		return restart(StepSeekItem), nil
	case isOption(t.text, "4") || hasWord(words, "voluntario", "distribuir", "entregar"):
		t.reply(promptVolunteerReg)
		return restart(StepVolunteerRegion), nil
	}
	return e.showMenu(t), nil
}

// isOption matches a bare digit or its keycap emoji.
func isOption(text, digit string) bool {
	switch text {
	case digit, digit + "\uFE0F\u20E3", digit + "\u20E3":
		return true
	}
	return false
}

func hasWord(words []string, want ...string) bool {
	for _, w := range words {
		for _, x := range want {
			if w == x {
				return true
			}
		}
	}
	return false
}

// containsAny matches want as a substring of any word, so "doacoes" counts
// for "doac".
func containsAny(words []string, want ...string) bool {
	for _, w := range words {
		for _, x := range want {
			if strings.Contains(w, x) {
				return true
			}
		}
	}
	return false
}
