package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
)

// deepLEndpoint is the free-tier translate endpoint. Overridable in tests.
const deepLEndpoint = "https://api-free.deepl.com/v2/translate"

// DeepLTranslator calls the DeepL REST API.
type DeepLTranslator struct {
	APIKey   string
	Client   *http.Client
	Endpoint string
}

type deepLResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// deepLTarget maps target codes to DeepL's regioned variants. DeepL
// rejects plain "en" as a target and wants "en-US".
func deepLTarget(target card.LanguageCode) string {
	if target == card.LangEnglish {
		return "en-US"
	}
	return strings.ToUpper(string(target))
}

func (d *DeepLTranslator) Translate(ctx context.Context, text string, source, target card.LanguageCode) (string, error) {
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = deepLEndpoint
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("source_lang", strings.ToUpper(string(source)))
	form.Set("target_lang", deepLTarget(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.NewTranslateFailed("deepl", fmt.Errorf("build deepl request: %v", err))
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.Client.Do(req)
	if err != nil {
		return "", errors.NewTranslateFailed("deepl", fmt.Errorf("call deepl: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewTranslateFailed("deepl", fmt.Errorf("deepl returned status %d", resp.StatusCode))
	}

	var body deepLResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.NewTranslateFailed("deepl", fmt.Errorf("decode deepl response: %v", err))
	}
	if len(body.Translations) == 0 {
		return "", errors.NewTranslateFailed("deepl", fmt.Errorf("deepl returned no translations"))
	}
	return body.Translations[0].Text, nil
}
