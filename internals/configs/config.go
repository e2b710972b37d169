package configs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// CONFIG
// =======================

type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	Port           string        `env:"PORT" envDefault:"3000"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	BodyLimitMB    int           `env:"BODY_LIMIT_MB" envDefault:"8"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	CleanupCron    string        `env:"TOKEN_CLEANUP_CRON" envDefault:"15 3 * * *"`

	// link mailed by forgot-password; the token is appended as ?token=
	PasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"http://localhost:5173/reset-password"`

	DB       DBConfig       `envPrefix:"DB_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	Google   GoogleConfig   `envPrefix:"GOOGLE_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	OSS      OSSConfig      `envPrefix:"ALI_OSS_"`
	Midtrans MidtransConfig `envPrefix:"MIDTRANS_"`
	SMTP     SMTPConfig     `envPrefix:"SMTP_"`
	Seed     SeedConfig     `envPrefix:"SEED_"`
}

type DBConfig struct {
	Driver     string `env:"DRIVER" envDefault:"postgres"`
	Host       string `env:"HOST" envDefault:"localhost"`
	Port       string `env:"PORT" envDefault:"5432"`
	User       string `env:"USER"`
	Password   string `env:"PASSWORD"`
	Name       string `env:"NAME" envDefault:"phibitech"`
	SSLMode    string `env:"SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"phibitech.db"`

	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"60s"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"10m"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" envDefault:"true"`
}

// DSN builds the postgres URL, statement_timeout keeps a runaway query under the HTTP timeout.
func (d DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=phibitech&options=-c statement_timeout=3000",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret        string        `env:"SECRET"`
	RefreshSecret string        `env:"REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"24h"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"true"`
}

type GoogleConfig struct {
	ClientID        string `env:"CLIENT_ID"`
	ClientSecret    string `env:"CLIENT_SECRET"`
	RedirectURI     string `env:"REDIRECT_URI"`
	SuccessRedirect string `env:"SUCCESS_REDIRECT" envDefault:"/"`
}

func (g GoogleConfig) OAuthEnabled() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURI != ""
}

type SessionConfig struct {
	Secret string        `env:"SECRET"`
	Name   string        `env:"NAME" envDefault:"phibitech_session"`
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"8h"`
}

type OSSConfig struct {
	Endpoint      string  `env:"ENDPOINT"`
	AccessKey     string  `env:"ACCESS_KEY"`
	SecretKey     string  `env:"SECRET_KEY"`
	Bucket        string  `env:"BUCKET"`
	PublicBaseURL string  `env:"PUBLIC_BASE_URL"`
	MaxUploadMB   int     `env:"MAX_UPLOAD_MB" envDefault:"5"`
	MaxWidth      int     `env:"MAX_WIDTH" envDefault:"1600"`
	WebPQuality   float32 `env:"WEBP_QUALITY" envDefault:"80"`
}

func (o OSSConfig) Enabled() bool {
	return o.Endpoint != "" && o.AccessKey != "" && o.SecretKey != "" && o.Bucket != ""
}

type MidtransConfig struct {
	ServerKey     string `env:"SERVER_KEY"`
	UseProduction bool   `env:"USE_PROD" envDefault:"false"`
}

type SMTPConfig struct {
	Host       string `env:"HOST"`
	Port       int    `env:"PORT" envDefault:"587"`
	Username   string `env:"USERNAME"`
	Password   string `env:"PASSWORD"`
	From       string `env:"FROM" envDefault:"Phibitech <no-reply@phibitech.local>"`
	AdminInbox string `env:"ADMIN_INBOX"`
}

type SeedConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.IsProduction() && strings.TrimSpace(c.Session.Secret) == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required in production"))
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.DB.Driver))
	}
	return errors.Join(errs...)
}

// =======================
// ENV LOADER
// =======================

// LoadEnv reads .env (outside production) and parses the process configuration once.
func LoadEnv() (*Config, error) {
	if !strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		if err := godotenv.Load(); err != nil {
			log.Println("[INFO] .env not found, using system environment")
		} else {
			log.Println("[INFO] .env loaded")
		}
	} else {
		log.Println("[INFO] production mode, using system environment")
	}

	cfg, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv maps environment variables onto Config without touching .env files.
func ParseEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = cfg.JWT.Secret
	}
	return &cfg, nil
}

// =======================
// GORM LOGGER CUSTOM
// =======================

type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(production bool) gormLogger.Interface {
	level := gormLogger.Info
	if production {
		level = gormLogger.Warn
	}
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error && !errors.Is(err, gormLogger.ErrRecordNotFound):
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
