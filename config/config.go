package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Render   RenderConfig   `yaml:"render"`
	Email    EmailConfig    `yaml:"email"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Export   ExportConfig   `yaml:"export"`
	Cache    CacheConfig    `yaml:"cache"`
	Users    []User         `yaml:"users"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, sqlite
	DSN    string `yaml:"dsn"`
}

// StorageConfig selects the durable store certificates are copied into.
type StorageConfig struct {
	Backend string      `yaml:"backend"` // minio, gcs
	Minio   MinioConfig `yaml:"minio"`
	GCS     GCSConfig   `yaml:"gcs"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket"`
	CredentialsFile string `yaml:"credentials_file"`
}

type RenderConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	TemplateID     string `yaml:"template_id"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type EmailConfig struct {
	APIURL         string `yaml:"api_url"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ExportConfig struct {
	MaxTrackedJobs int `yaml:"max_tracked_jobs"`
}

type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// User is a login account. PasswordHash is a bcrypt hash; Password is only
// honoured when no hash is configured.
type User struct {
	ID           string `yaml:"id"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	Company      string `yaml:"company"`
}

var GlobalConfig *Config

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	GlobalConfig = &cfg
	return &cfg, nil
}

// applyEnv lets secrets live outside the yaml file.
func (c *Config) applyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{"DB_DSN", &c.Database.DSN},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"MINIO_ACCESS_KEY", &c.Storage.Minio.AccessKey},
		{"MINIO_SECRET_KEY", &c.Storage.Minio.SecretKey},
		{"GCS_CREDENTIALS_FILE", &c.Storage.GCS.CredentialsFile},
		{"RENDER_API_TOKEN", &c.Render.APIToken},
		{"EMAIL_API_TOKEN", &c.Email.APIToken},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "minio"
	}
	if c.Render.TimeoutSeconds == 0 {
		c.Render.TimeoutSeconds = 60
	}
	if c.Email.TimeoutSeconds == 0 {
		c.Email.TimeoutSeconds = 30
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Export.MaxTrackedJobs == 0 {
		c.Export.MaxTrackedJobs = 200
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
