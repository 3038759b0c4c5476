package notestore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/kv"
	"github.com/starford/ansuz/internal/models"
)

// Theme returns the stored UI theme, defaulting to light.
func (s *Store) Theme(ctx context.Context) (string, error) {
	data, err := s.kv.Get(ctx, keyTheme)
	if err != nil {
		if err == kv.ErrNoKey {
			return models.ThemeLight, nil
		}
		return "", err
	}
	var theme string
	if err := json.Unmarshal(data, &theme); err != nil {
		return "", fmt.Errorf("notestore: decode theme: %w", err)
	}
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return models.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme stores the UI theme.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if theme != models.ThemeLight && theme != models.ThemeDark {
		return fmt.Errorf("%w: unknown theme %q", apperr.ErrInvalidInput, theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("notestore: encode theme: %w", err)
	}
	return s.kv.Set(ctx, keyTheme, data)
}

// ToggleTheme flips between light and dark and returns the new value.
func (s *Store) ToggleTheme(ctx context.Context) (string, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := models.ThemeDark
	if current == models.ThemeDark {
		next = models.ThemeLight
	}
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
