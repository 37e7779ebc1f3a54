package ledger

import (
	"context"
	"fmt"

	"github.com/rashidulhasanrafi/hisab/internal/storage"
)

// Preferences are global scalar settings, not profile-scoped.
type Preferences struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
	Sound    bool   `json:"sound"`
}

// Prefs reads and writes the global preference keys.
type Prefs struct {
	kv storage.KV
}

func NewPrefs(kv storage.KV) *Prefs {
	return &Prefs{kv: kv}
}

func (p *Prefs) Get(ctx context.Context) (Preferences, error) {
	prefs := Preferences{Theme: "light", Language: "en", Sound: true}

	if v, ok, err := p.kv.Get(ctx, KeyTheme); err != nil {
		return prefs, fmt.Errorf("load theme: %w", err)
	} else if ok {
		prefs.Theme = v
	}
	if v, ok, err := p.kv.Get(ctx, KeyLanguage); err != nil {
		return prefs, fmt.Errorf("load language: %w", err)
	} else if ok {
		prefs.Language = v
	}
	if v, ok, err := p.kv.Get(ctx, KeySound); err != nil {
		return prefs, fmt.Errorf("load sound: %w", err)
	} else if ok {
		prefs.Sound = v == "true"
	}
	return prefs, nil
}

func (p *Prefs) Set(ctx context.Context, prefs Preferences) error {
	if err := p.kv.Set(ctx, KeyTheme, prefs.Theme); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	if err := p.kv.Set(ctx, KeyLanguage, prefs.Language); err != nil {
		return fmt.Errorf("save language: %w", err)
	}
	sound := "false"
	if prefs.Sound {
		sound = "true"
	}
	if err := p.kv.Set(ctx, KeySound, sound); err != nil {
		return fmt.Errorf("save sound: %w", err)
	}
	return nil
}
