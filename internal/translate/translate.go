// Package translate provides translation backends for card text.
package translate

import (
	"context"
	"net/http"
	"time"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/config"
	"github.com/ksaito/kotoba/internal/errors"
)

// Translator converts text from one language to another.
type Translator interface {
	Translate(ctx context.Context, text string, source, target card.LanguageCode) (string, error)
}

// defaultTimeout bounds a single translation request.
const defaultTimeout = 30 * time.Second

// New builds the translator selected by cfg.TranslatorBackend.
func New(cfg *config.Config) (Translator, error) {
	client := &http.Client{Timeout: defaultTimeout}
	switch cfg.TranslatorBackend {
	case config.BackendGoogle:
		if cfg.GoogleTranslateAPI == "" {
			return nil, errors.NewInvalidRequest("GOOGLE_TRANSLATE_API is not configured")
		}
		return &GoogleTranslator{Endpoint: cfg.GoogleTranslateAPI, Client: client}, nil
	case config.BackendDeepL:
		if cfg.DeepLAPIKey == "" {
			return nil, errors.NewInvalidRequest("DEEPL_API_KEY is not configured")
		}
		return &DeepLTranslator{APIKey: cfg.DeepLAPIKey, Client: client}, nil
	default:
		return nil, errors.NewInvalidRequest("unknown translator backend: " + cfg.TranslatorBackend)
	}
}
