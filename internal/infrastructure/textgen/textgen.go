package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrDisabled aucune clé API configurée
var ErrDisabled = errors.New("génération de texte désactivée")

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Generator interface utilisée par le module d'analyse
type Generator interface {
	Enabled() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client Gemini ; client nil = désactivé
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		fmt.Printf("[TEXTGEN] ⚠️  GENAI_API_KEY vide - résumés et insights IA désactivés\n")
		return &Client{}, nil
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("création client GenAI: %w", err)
	}

	fmt.Printf("[TEXTGEN] ✅ Client GenAI prêt (modèle %s)\n", model)
	return &Client{client: client, model: model, timeout: timeout}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Generate texte brut de la première réponse candidate
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("appel GenAI: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("réponse GenAI vide")
	}
	return text, nil
}
