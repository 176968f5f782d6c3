package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/PhelGc/fieldops/internal/incident"
)

// Límite de Discord para la descripción de un embed
const maxDescription = 4096

const (
	colorGreen  = 0x2ECC71
	colorOrange = 0xF39C12
	colorRed    = 0xE74C3C
	colorBlue   = 0x3498DB
)

// Notifier avisa de análisis e importaciones
type Notifier interface {
	NotifyAnalysis(ctx context.Context, vendor string, result incident.AnalysisResult) error
	NotifyImport(ctx context.Context, count int, source string) error
	Close()
}

// Nop notificador deshabilitado (sin token configurado)
type Nop struct{}

func (Nop) NotifyAnalysis(context.Context, string, incident.AnalysisResult) error { return nil }
func (Nop) NotifyImport(context.Context, int, string) error { return nil }
func (Nop) Close() {}

// sender operaciones de discordgo.Session que se usan
type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Close() error
}

type Client struct {
	session sender
	config  *Config
	now     func() time.Time
	logger  *zap.Logger
}

type Config struct {
	BotToken       string
	GuildID        string
	Channels       map[string]string // Map de proveedor -> channel ID
	DefaultChannel string
}

var _ Notifier = (*Client)(nil)

// New devuelve Nop si no hay token; si no, un cliente sobre discordgo
func New(config *Config, logger *zap.Logger) (Notifier, error) {
	if config == nil || config.BotToken == "" {
		return Nop{}, nil
	}
	client, err := NewClient(config, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creando sesión Discord: %w", err)
	}
	return newClient(session, config, logger), nil
}

func newClient(s sender, config *Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{session: s, config: config, now: time.Now, logger: logger}
}

// ChannelFor canal del proveedor o, si no tiene, el canal por defecto
func (c *Client) ChannelFor(vendor string) (string, bool) {
	if channelID, exists := c.config.Channels[vendor]; exists {
		return channelID, true
	}
	return c.config.DefaultChannel, c.config.DefaultChannel != ""
}

// NotifyAnalysis envía el reporte de un análisis al canal correspondiente
func (c *Client) NotifyAnalysis(ctx context.Context, vendor string, result incident.AnalysisResult) error {
	channelID, ok := c.ChannelFor(vendor)
	if !ok {
		c.logger.Debug("Sin canal de Discord para el proveedor", zap.String("vendor", vendor))
		return nil
	}

	embed := c.buildAnalysisEmbed(result)
	if _, err := c.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("error enviando mensaje a Discord: %w", err)
	}
	return nil
}

// NotifyImport avisa en el canal por defecto que se importó un lote
func (c *Client) NotifyImport(ctx context.Context, count int, source string) error {
	if c.config.DefaultChannel == "" {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Importación de incidencias",
		Description: fmt.Sprintf("%d registros importados (%s)", count, source),
		Color:       colorBlue,
		Timestamp:   c.now().Format(time.RFC3339),
		Footer:      footer(),
	}
	if _, err := c.session.ChannelMessageSendEmbed(c.config.DefaultChannel, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("error enviando mensaje a Discord: %w", err)
	}
	return nil
}

// Close cierra la conexión con Discord
func (c *Client) Close() {
	if c.session != nil {
		c.session.Close()
	}
}

// buildAnalysisEmbed construye el embed con el resultado del análisis
func (c *Client) buildAnalysisEmbed(result incident.AnalysisResult) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Incidencias", Value: fmt.Sprint(result.TotalIncidents), Inline: true},
		{Name: "Abandonos", Value: fmt.Sprint(result.TotalAbandons), Inline: true},
		{Name: "General", Value: incident.FormatAvg(result.AvgOverall), Inline: true},
		{Name: "Puntualidad", Value: incident.FormatAvg(result.AvgPunctuality), Inline: true},
		{Name: "Entregables", Value: incident.FormatAvg(result.AvgDeliverables), Inline: true},
	}
	if result.Banned() {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Lista negra", Value: result.BanContext})
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s: %s", result.EntityType, result.EntityName),
		Description: truncate(result.ReportText, maxDescription),
		Color:       riskColor(result),
		Fields:      fields,
		Timestamp:   c.now().Format(time.RFC3339),
		Footer:      footer(),
	}
}

// riskColor rojo si está vetado; si no, según el promedio general
func riskColor(result incident.AnalysisResult) int {
	switch {
	case result.Banned():
		return colorRed
	case result.AvgOverall >= 4:
		return colorGreen
	case result.AvgOverall >= 3:
		return colorOrange
	default:
		return colorRed
	}
}

// truncate corta en runas para no partir caracteres multibyte
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func footer() *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{Text: "FieldOps - Notificación automatizada"}
}
