package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contiene toda la configuración del sistema
type Config struct {
	Storage  StorageConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Discord  DiscordConfig
	Jira     JiraConfig
	Sync     SyncConfig
	Admin    AdminConfig
	Log      LogConfig
}

// StorageConfig configuración del almacenamiento persistente
type StorageConfig struct {
	Driver     string // file, sqlite o mysql
	BasePath   string // Directorio para el driver file
	SQLitePath string // Archivo para el driver sqlite
}

// DatabaseConfig configuración de la base de datos MySQL
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// GeminiConfig configuración del servicio de análisis
type GeminiConfig struct {
	APIKey         string
	Model          string
	ThinkingBudget int
	PromptPath     string // Plantilla alternativa del prompt (opcional)
	Timeout        time.Duration
	Concurrency    int // Análisis simultáneos en "analyze all"
}

// DiscordConfig configuración del bot de Discord
type DiscordConfig struct {
	BotToken       string
	GuildID        string
	Channels       map[string]string // Map de proveedor -> channel ID
	DefaultChannel string
}

// JiraConfig configuración de conexión a Jira
type JiraConfig struct {
	URL           string
	Username      string
	APIToken      string
	Project       string
	Status        string // Estado específico a buscar
	Assignee      string // Técnicos asignados, separados por coma
	CurrentSprint bool   // Si buscar solo en el sprint actual
	DefaultVendor string // Proveedor cuando el ticket no lo trae
	Fields        JiraFieldMapping
}

// JiraFieldMapping campos custom de Jira que alimentan columnas del importador
type JiraFieldMapping struct {
	Vendor       string
	Overall      string
	Punctuality  string
	Deliverables string
	Abandoned    string
}

// SyncConfig configuración de sincronización
type SyncConfig struct {
	IntervalMinutes int
}

// AdminConfig usuario administrador inicial
type AdminConfig struct {
	Username string
	Password string
}

// LogConfig nivel y formato de logs
type LogConfig struct {
	Level  string
	Format string // json o console
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe
	godotenv.Load()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}

	config := &Config{
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "file")),
			BasePath:   getEnvOrDefault("STORAGE_BASE_PATH", "data/fieldops"),
			SQLitePath: getEnvOrDefault("SQLITE_PATH", "data/fieldops.db"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "3306"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: getEnvOrDefault("DB_DATABASE", "fieldops"),
		},
		Gemini: GeminiConfig{
			APIKey:         apiKey,
			Model:          getEnvOrDefault("GEMINI_MODEL", "gemini-3-pro-preview"),
			ThinkingBudget: getEnvInt("GEMINI_THINKING_BUDGET", 32768),
			PromptPath:     os.Getenv("EVALUATOR_PROMPT_PATH"),
			Timeout:        time.Duration(getEnvInt("ANALYSIS_TIMEOUT_SECONDS", 120)) * time.Second,
			Concurrency:    getEnvInt("ANALYSIS_CONCURRENCY", 4),
		},
		Discord: DiscordConfig{
			BotToken:       os.Getenv("DISCORD_BOT_TOKEN"),
			GuildID:        os.Getenv("DISCORD_GUILD_ID"),
			Channels:       parseDiscordChannels(),
			DefaultChannel: os.Getenv("DISCORD_DEFAULT_CHANNEL"),
		},
		Jira: JiraConfig{
			URL:           os.Getenv("JIRA_URL"),
			Username:      os.Getenv("JIRA_USERNAME"),
			APIToken:      os.Getenv("JIRA_API_TOKEN"),
			Project:       os.Getenv("JIRA_PROJECT"),
			Status:        os.Getenv("JIRA_STATUS"),
			Assignee:      os.Getenv("JIRA_ASSIGNEE"),
			CurrentSprint: os.Getenv("JIRA_CURRENT_SPRINT") == "true",
			DefaultVendor: os.Getenv("JIRA_DEFAULT_VENDOR"),
			Fields: JiraFieldMapping{
				Vendor:       os.Getenv("JIRA_FIELD_VENDOR"),
				Overall:      os.Getenv("JIRA_FIELD_OVERALL"),
				Punctuality:  os.Getenv("JIRA_FIELD_PUNCTUALITY"),
				Deliverables: os.Getenv("JIRA_FIELD_DELIVERABLES"),
				Abandoned:    os.Getenv("JIRA_FIELD_ABANDONED"),
			},
		},
		Sync: SyncConfig{
			IntervalMinutes: getEnvInt("SYNC_INTERVAL_MINUTES", 5),
		},
		Admin: AdminConfig{
			Username: getEnvOrDefault("FIELDOPS_ADMIN_USERNAME", "gtorres@tech-americas.com"),
			Password: getEnvOrDefault("FIELDOPS_ADMIN_PASSWORD", "2130"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
	}

	return config, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt devuelve defaultValue si la variable no existe o no es un entero positivo
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

// parseDiscordChannels parsea los canales de Discord desde variables de entorno
// Formato esperado: DISCORD_CHANNELS="proveedor1:channelID1,proveedor2:channelID2"
func parseDiscordChannels() map[string]string {
	channels := make(map[string]string)

	channelsEnv := os.Getenv("DISCORD_CHANNELS")
	if channelsEnv == "" {
		return channels
	}

	// Dividir por comas para obtener cada asignación
	pairs := strings.Split(channelsEnv, ",")
	for _, pair := range pairs {
		// El ID va después de los últimos dos puntos; el nombre puede contenerlos
		idx := strings.LastIndex(pair, ":")
		if idx < 0 {
			continue
		}
		vendor := strings.TrimSpace(pair[:idx])
		channelID := strings.TrimSpace(pair[idx+1:])
		if vendor != "" && channelID != "" {
			channels[vendor] = channelID
		}
	}

	return channels
}
