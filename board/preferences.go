package board

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"taskflow/domain"
	"taskflow/storage"
)

// Preferences holds the language and theme of a workspace. Both are stored
// as raw strings under their own keys.
type Preferences struct {
	mu     sync.RWMutex
	kv     storage.KV
	userID string
	prefs  domain.Preferences
	logger *log.Logger
}

func NewPreferences(kv storage.KV, userID string, logger *log.Logger) *Preferences {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Preferences{kv: kv, userID: userID, prefs: domain.DefaultPreferences(), logger: logger}
}

// Load reads both keys, keeping the default for anything missing or invalid.
// A storage read failure is returned and the current values are kept.
func (p *Preferences) Load(ctx context.Context) error {
	prefs := domain.DefaultPreferences()
	raw, ok, err := p.read(ctx, LanguageKey)
	if err != nil {
		return err
	}
	if ok {
		if l, err := domain.ParseLanguage(raw); err == nil {
			prefs.Language = l
		} else {
			p.logger.WithError(err).Warn("ignoring stored language")
		}
	}
	raw, ok, err = p.read(ctx, ThemeKey)
	if err != nil {
		return err
	}
	if ok {
		if th, err := domain.ParseTheme(raw); err == nil {
			prefs.Theme = th
		} else {
			p.logger.WithError(err).Warn("ignoring stored theme")
		}
	}

	p.mu.Lock()
	p.prefs = prefs
	p.mu.Unlock()
	return nil
}

func (p *Preferences) read(ctx context.Context, name string) (string, bool, error) {
	data, err := p.kv.Get(ctx, storage.Key(p.userID, name))
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		p.logger.WithError(err).WithField("key", name).Error("read preference")
		return "", false, fmt.Errorf("%w: read %s: %w", ErrUnavailable, name, err)
	}
	return string(data), true, nil
}

func (p *Preferences) Get() domain.Preferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.prefs
}

func (p *Preferences) Language() domain.Language {
	return p.Get().Language
}

// Set validates and stores both values. Write failures are logged only.
func (p *Preferences) Set(ctx context.Context, prefs domain.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.prefs = prefs
	p.mu.Unlock()

	p.write(ctx, LanguageKey, string(prefs.Language))
	p.write(ctx, ThemeKey, string(prefs.Theme))
	return nil
}

func (p *Preferences) write(ctx context.Context, name, value string) {
	if err := p.kv.Set(ctx, storage.Key(p.userID, name), []byte(value)); err != nil {
		p.logger.WithError(err).WithField("key", name).Error("write preference")
	}
}
