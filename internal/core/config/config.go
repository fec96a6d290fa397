package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	MaxBodyMB       int
	CORSOrigins     []string `mapstructure:"cors_origins"`
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name     string
	Env      string
	HTTP     HTTP
	Admin    AdminHTTP
	Frontend string // 登录完成后的跳转地址
}

func (a App) IsDev() bool { return a.Env == "" || a.Env == "dev" || a.Env == "development" }

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	CookieName        string `mapstructure:"cookie_name"`
	CookieSecure      bool   `mapstructure:"cookie_secure"`
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type GitHub struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	Scopes       []string
}

type OAuth struct {
	GitHub GitHub `mapstructure:"github"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type LocalStorage struct {
	Dir string
}

type RemoteStorage struct {
	Endpoint      string
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string
	Region        string
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// Storage Mode: local（开发）| remote（对象存储）
type Storage struct {
	Mode   string
	Local  LocalStorage  `mapstructure:"local"`
	Remote RemoteStorage `mapstructure:"remote"`
}

type Certificate struct {
	Domain            string            // 验证链接域名，如 cudicoders.dev
	Template          string            // 模板 PNG 路径，空则使用内置纯色模板
	FallbackSignature string            `mapstructure:"fallback_signature"`
	Signatures        map[string]string // presenterID -> 签名 PNG 路径
	HashSecret        string            `mapstructure:"hash_secret"`
}

type Config struct {
	App         App
	Log         Log
	JWT         JWT
	OAuth       OAuth `mapstructure:"oauth"`
	DB          DB
	Redis       Redis `mapstructure:"redis"`
	Storage     Storage
	Certificate Certificate
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "community-events")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 5)
	v.SetDefault("app.http.writetimeoutsec", 10)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.maxbodymb", 16)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.frontend", "/")
	v.SetDefault("log.level", "info")
	// 空默认值也要登记，AutomaticEnv 才能在 Unmarshal 时覆盖
	for _, k := range []string{
		"jwt.secret", "oauth.github.client_id", "oauth.github.client_secret", "oauth.github.redirect_url",
		"redis.addr", "redis.password", "db.username", "db.password",
		"storage.remote.endpoint", "storage.remote.access_key", "storage.remote.secret_key",
		"storage.remote.bucket", "storage.remote.region", "storage.remote.public_base_url",
		"certificate.template", "certificate.fallback_signature", "certificate.hash_secret",
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault("jwt.issuer", "community-events")
	v.SetDefault("jwt.accesstokenttlmin", 60*24*7)
	v.SetDefault("jwt.cookie_name", "session")
	v.SetDefault("oauth.github.scopes", []string{"read:user", "user:email"})
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:community.db?_pragma=foreign_keys(1)")
	v.SetDefault("db.maxopenconns", 10)
	v.SetDefault("db.maxidleconns", 5)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("redis.ttl_sec", 30)
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.local.dir", "./uploads/images")
	v.SetDefault("certificate.domain", "localhost:8080")
}

// Load 读取 yaml + APP_ 前缀环境变量（a.b → APP_A_B）；文件不存在时只用默认值与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	switch c.Storage.Mode {
	case "local":
		if c.Storage.Local.Dir == "" {
			return fmt.Errorf("config: storage.local.dir is required")
		}
	case "remote":
		if c.Storage.Remote.Endpoint == "" || c.Storage.Remote.Bucket == "" {
			return fmt.Errorf("config: storage.remote.endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("config: unknown storage.mode %q", c.Storage.Mode)
	}
	return nil
}
