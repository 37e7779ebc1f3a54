// Package insights generates short financial tips from dashboard totals
// using Gemini. Tips are advisory text only; nothing here feeds back into
// the ledger.
package insights

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/rashidulhasanrafi/hisab/internal/core"
)

// DefaultModel is the Gemini model used for tip generation.
const DefaultModel = "gemini-2.5-flash"

// Language codes accepted by Tip. Anything other than "bn" is treated as
// English.
const (
	LanguageEnglish = "en"
	LanguageBengali = "bn"
)

type Advisor struct {
	client *genai.Client
	model  string
}

// NewAdvisor builds a Gemini-backed advisor. The API key comes from the
// environment (GEMINI_API_KEY or GOOGLE_API_KEY, per the genai SDK).
func NewAdvisor(ctx context.Context) (*Advisor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Advisor{client: client, model: DefaultModel}, nil
}

// Tip asks the model for one short, practical financial tip based on the
// current totals. The summary is built server-side; no user-entered text
// reaches the prompt.
func (a *Advisor) Tip(ctx context.Context, stats core.DashboardStats, currency, language string) (string, error) {
	prompt := BuildTipPrompt(stats, currency, language)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate tip: %w", err)
	}

	tip := strings.TrimSpace(resp.Text())
	if tip == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return tip, nil
}

// BuildTipPrompt renders the tip prompt from dashboard totals.
func BuildTipPrompt(stats core.DashboardStats, currency, language string) string {
	langName := "English"
	if language == LanguageBengali {
		langName = "Bengali"
	}

	var b strings.Builder
	b.WriteString("You are a financial assistant.\n")
	b.WriteString("User summary:\n")
	fmt.Fprintf(&b, "- Income: %s %s\n", stats.TotalIncome.String(), currency)
	fmt.Fprintf(&b, "- Expense: %s %s\n", stats.TotalExpense.String(), currency)
	fmt.Fprintf(&b, "- Balance: %s %s\n", stats.Balance.String(), currency)
	b.WriteString("\nGive ONE short, practical financial tip.\n")
	b.WriteString("No greeting. No emojis. Simple language.\n")
	fmt.Fprintf(&b, "Language: %s\n", langName)
	return b.String()
}

// FallbackTip is returned to clients when generation fails or the advisor
// is not configured.
func FallbackTip(language string) string {
	if language == LanguageBengali {
		return "AI টিপ লোড করতে পারিনি। পরে চেষ্টা করুন।"
	}
	return "Could not load AI tip. Please try again later."
}
