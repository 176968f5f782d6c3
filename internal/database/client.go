package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/PhelGc/fieldops/internal/storage"
)

// Dialectos soportados
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Client guarda los blobs de la aplicación en una tabla SQL (MySQL o SQLite)
type Client struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

type Config struct {
	Driver   string // mysql o sqlite
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Path     string // Archivo SQLite
}

type dialect struct {
	createTable string
	upsert      string
}

var dialects = map[string]dialect{
	DriverMySQL: {
		createTable: `
	CREATE TABLE IF NOT EXISTS fieldops_blobs (
		blob_key   VARCHAR(191) NOT NULL,
		blob_value LONGTEXT     NOT NULL,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (blob_key)
	);`,
		upsert: `
	INSERT INTO fieldops_blobs (blob_key, blob_value, updated_at)
	VALUES (?, ?, ?)
	ON DUPLICATE KEY UPDATE
		blob_value = VALUES(blob_value),
		updated_at = VALUES(updated_at)`,
	},
	DriverSQLite: {
		createTable: `
	CREATE TABLE IF NOT EXISTS fieldops_blobs (
		blob_key   TEXT     NOT NULL PRIMARY KEY,
		blob_value TEXT     NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
		upsert: `
	INSERT INTO fieldops_blobs (blob_key, blob_value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(blob_key) DO UPDATE SET
		blob_value = excluded.blob_value,
		updated_at = excluded.updated_at`,
	},
}

var _ storage.Store = (*Client)(nil)

// DSN arma la cadena de conexión para el driver configurado
func DSN(config *Config) (string, error) {
	switch config.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = config.Username
		mc.Passwd = config.Password
		mc.Net = "tcp"
		mc.Addr = config.Host + ":" + config.Port
		mc.DBName = config.Database
		mc.ParseTime = true
		mc.Loc = time.Local
		return mc.FormatDSN(), nil
	case DriverSQLite:
		if config.Path == "" {
			return "", errors.New("ruta de SQLite vacía")
		}
		return config.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	default:
		return "", fmt.Errorf("driver de base de datos no soportado: %q", config.Driver)
	}
}

func NewClient(ctx context.Context, config *Config, logger *zap.Logger) (*Client, error) {
	d, ok := dialects[config.Driver]
	if !ok {
		return nil, fmt.Errorf("driver de base de datos no soportado: %q", config.Driver)
	}

	dsn, err := DSN(config)
	if err != nil {
		return nil, err
	}

	if config.Driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
			return nil, fmt.Errorf("error creando directorio de SQLite: %w", err)
		}
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error abriendo %s: %w", config.Driver, err)
	}

	// Pool de conexiones: la app es de un solo usuario, pocas conexiones bastan
	if config.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute) // reciclar conexiones antiguas
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error haciendo ping a %s: %w", config.Driver, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Conexión establecida con la base de datos",
		zap.String("driver", config.Driver),
		zap.String("host", config.Host),
		zap.String("path", config.Path))

	client := &Client{db: db, dialect: d, logger: logger}
	if err := client.CreateTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return client, nil
}

// CreateTable crea la tabla fieldops_blobs si no existe
func (c *Client) CreateTable(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, c.dialect.createTable); err != nil {
		return fmt.Errorf("error creando tabla fieldops_blobs: %w", err)
	}

	c.logger.Debug("Tabla fieldops_blobs verificada/creada exitosamente")
	return nil
}

// Get obtiene el blob de una clave
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT blob_value FROM fieldops_blobs WHERE blob_key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put inserta o actualiza el blob de una clave
func (c *Client) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, c.dialect.upsert, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error guardando %s: %w", key, err)
	}
	return nil
}

// Delete elimina una clave
func (c *Client) Delete(ctx context.Context, key string) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM fieldops_blobs WHERE blob_key = ?`, key)
	if err != nil {
		return fmt.Errorf("error eliminando %s: %w", key, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		c.logger.Debug("Clave eliminada", zap.String("key", key))
	}
	return nil
}

// Close cierra la conexión con la base de datos
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
