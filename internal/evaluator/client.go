package evaluator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

// Client realiza análisis de desempeño sobre un Generator (Gemini en producción)
type Client struct {
	gen     Generator
	prompts *PromptLoader
	timeout time.Duration
	logger  *zap.Logger
}

var _ Analyzer = (*Client)(nil)

// NewClient crea un cliente de análisis. timeout <= 0 no limita la llamada.
func NewClient(gen Generator, prompts *PromptLoader, timeout time.Duration, logger *zap.Logger) *Client {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gen: gen, prompts: prompts, timeout: timeout, logger: logger}
}

// Analyze arma el prompt y llama al modelo. Cualquier falla se registra y se
// devuelve como texto de error, nunca como error.
func (c *Client) Analyze(ctx context.Context, req Request) string {
	log := c.logger.With(
		zap.String("entity", req.EntityName),
		zap.String("type", string(req.EntityType)),
		zap.Int("incidents", len(req.Incidents)))

	prompt, err := c.prompts.Build(req)
	if err != nil {
		log.Error("Error armando prompt de análisis", zap.Error(err))
		return ErrorAnalysisText
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		log.Error("Error en análisis Gemini", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return ErrorAnalysisText
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("El modelo no devolvió texto")
		return NoAnalysisText
	}

	log.Info("Análisis generado", zap.Duration("elapsed", time.Since(start)))
	return text
}

// AnalyzeMany corre varios análisis con a lo sumo limit en paralelo.
// Los reportes se devuelven en el mismo orden que reqs.
func AnalyzeMany(ctx context.Context, a Analyzer, reqs []Request, limit int) []string {
	reports := make([]string, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		g.Go(func() error {
			reports[i] = a.Analyze(gctx, req)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// GeminiGenerator Generator sobre la API de Gemini (google.golang.org/genai)
type GeminiGenerator struct {
	client         *genai.Client
	model          string
	thinkingBudget int32
}

// GeminiOptions opciones de conexión; BaseURL y HTTPClient sólo para pruebas o proxies
type GeminiOptions struct {
	APIKey         string
	Model          string
	ThinkingBudget int
	BaseURL        string
	HTTPClient     *http.Client
}

// NewGeminiGenerator crea el cliente genai
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("falta la API key de Gemini")
	}
	if opts.Model == "" {
		opts.Model = "gemini-3-pro-preview"
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creando cliente Gemini: %w", err)
	}

	return &GeminiGenerator{
		client:         client,
		model:          opts.Model,
		thinkingBudget: int32(opts.ThinkingBudget),
	}, nil
}

// GenerateText envía el prompt a Gemini y devuelve el texto de respuesta
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if g.thinkingBudget > 0 {
		config = &genai.GenerateContentConfig{
			ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(g.thinkingBudget)},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("error llamando Gemini API: %w", err)
	}
	return resp.Text(), nil
}

// Unavailable Generator usado cuando no hay API key configurada
type Unavailable struct{}

func (Unavailable) GenerateText(context.Context, string) (string, error) {
	return "", errors.New("análisis no disponible: falta GEMINI_API_KEY")
}
