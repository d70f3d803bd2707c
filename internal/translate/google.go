package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ksaito/kotoba/internal/card"
	"github.com/ksaito/kotoba/internal/errors"
)

// GoogleTranslator calls a Google Apps Script translation endpoint.
// The endpoint takes text, source and target as query parameters and
// answers with a small JSON envelope.
type GoogleTranslator struct {
	Endpoint string
	Client   *http.Client
}

type googleResponse struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

func (g *GoogleTranslator) Translate(ctx context.Context, text string, source, target card.LanguageCode) (string, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("source", string(source))
	params.Set("target", string(target))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.NewTranslateFailed("google", fmt.Errorf("build google request: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", errors.NewTranslateFailed("google", fmt.Errorf("call google endpoint: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewTranslateFailed("google", fmt.Errorf("google endpoint returned status %d", resp.StatusCode))
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", errors.NewTranslateFailed("google", fmt.Errorf("decode google response: %v", err))
	}
	if body.Code != http.StatusOK {
		return "", errors.NewTranslateFailed("google", fmt.Errorf("google translation failed: %s", body.Text))
	}
	return body.Text, nil
}
