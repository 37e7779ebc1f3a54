package insights

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rashidulhasanrafi/hisab/internal/core"
)

func TestBuildTipPrompt(t *testing.T) {
	stats := core.DashboardStats{
		TotalIncome:  decimal.NewFromInt(5000),
		TotalExpense: decimal.NewFromInt(3200),
		Balance:      decimal.NewFromInt(1800),
	}

	prompt := BuildTipPrompt(stats, "BDT", LanguageEnglish)

	for _, want := range []string{
		"- Income: 5000 BDT",
		"- Expense: 3200 BDT",
		"- Balance: 1800 BDT",
		"ONE short, practical financial tip",
		"Language: English",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildTipPromptBengali(t *testing.T) {
	prompt := BuildTipPrompt(core.DashboardStats{}, "USD", LanguageBengali)
	if !strings.Contains(prompt, "Language: Bengali") {
		t.Errorf("prompt missing Bengali marker:\n%s", prompt)
	}
}

func TestFallbackTip(t *testing.T) {
	if got := FallbackTip(LanguageEnglish); !strings.Contains(got, "try again") {
		t.Errorf("english fallback = %q", got)
	}
	if got := FallbackTip(LanguageBengali); got == FallbackTip(LanguageEnglish) {
		t.Error("bengali fallback should differ from english")
	}
}
