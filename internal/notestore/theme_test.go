package notestore

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func TestThemeDefaultsToLight(t *testing.T) {
	s := newTestStore(t)
	theme, err := s.Theme(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if theme != models.ThemeLight {
		t.Errorf("theme = %q, want light", theme)
	}
}

func TestSetAndToggleTheme(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetTheme(ctx, models.ThemeDark); err != nil {
		t.Fatal(err)
	}
	theme, _ := s.Theme(ctx)
	if theme != models.ThemeDark {
		t.Errorf("theme = %q, want dark", theme)
	}

	next, err := s.ToggleTheme(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next != models.ThemeLight {
		t.Errorf("toggled to %q, want light", next)
	}

	if err := s.SetTheme(ctx, "solarized"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("invalid theme: err = %v, want ErrInvalidInput", err)
	}
}

func TestThemeFallsBackOnGarbage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.kv.Set(ctx, keyTheme, []byte(`"sepia"`)); err != nil {
		t.Fatal(err)
	}
	theme, err := s.Theme(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if theme != models.ThemeLight {
		t.Errorf("theme = %q, want light fallback", theme)
	}
}
