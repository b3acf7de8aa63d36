// config — загрузка конфигурации edge-шлюза Blastify.
//
// Источники (по убыванию приоритета):
//  1. явный путь --config;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. только ENV (cleanenv).
//
// После чтения файла ENV накладывается поверх значений из YAML.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvProd — окружение, в котором включаются Secure-куки и CSP.
const EnvProd = "prod"

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP      HTTPConfig      `yaml:"http"`
	Admin     AdminConfig     `yaml:"admin"`
	Upstreams UpstreamsConfig `yaml:"upstreams"`
	Auth      AuthConfig      `yaml:"auth"`
	Security  SecurityConfig  `yaml:"security"`
	Redis     RedisConfig     `yaml:"redis"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// IsProduction — признак production-окружения.
func (c Config) IsProduction() bool { return c.Env == EnvProd }

// HTTPConfig — публичный HTTP-сервер шлюза.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"3000"`
}

func (h HTTPConfig) Addr() string { return net.JoinHostPort(h.Host, h.Port) }

// AdminConfig — служебный listener для /metrics; наружу не публикуется.
type AdminConfig struct {
	Host string `yaml:"host" env:"ADMIN_HOST" env-default:"127.0.0.1"`
	Port string `yaml:"port" env:"ADMIN_PORT" env-default:"9090"`
}

func (a AdminConfig) Addr() string { return net.JoinHostPort(a.Host, a.Port) }

// UpstreamsConfig — адреса REST API и фронтенда.
// APIPrefix срезается с пути перед проксированием в API.
type UpstreamsConfig struct {
	APIURL      string `yaml:"api_url"      env:"API_URL"      env-default:"http://localhost:5000/api"`
	FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3001"`
	APIPrefix   string `yaml:"api_prefix"   env:"API_PREFIX"   env-default:"/api"`
}

// AuthConfig — параметры cookie-сессии и путей гейта.
type AuthConfig struct {
	AccessTTL     time.Duration `yaml:"access_ttl"     env:"ACCESS_TTL"     env-default:"1h"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl"    env:"REFRESH_TTL"    env-default:"168h"`
	SignInPath    string        `yaml:"signin_path"    env:"SIGNIN_PATH"    env-default:"/signin"`
	DashboardPath string        `yaml:"dashboard_path" env:"DASHBOARD_PATH" env-default:"/dashboard"`
}

// SecurityConfig — параметры заголовков безопасности.
// APIOrigin попадает в connect-src CSP; если пуст, берётся origin из upstreams.api_url.
type SecurityConfig struct {
	APIOrigin       string   `yaml:"api_origin"        env:"API_ORIGIN"`
	ExtraConnectSrc []string `yaml:"extra_connect_src" env:"EXTRA_CONNECT_SRC" env-separator:","`
}

// RedisConfig — список отозванных токенов; пустой URL выключает его.
type RedisConfig struct {
	URL    string `yaml:"url"    env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"blastify:revoked:"`
}

// TimeoutConfig — дедлайн запроса и таймаут исходящих вызовов к API.
type TimeoutConfig struct {
	Service  time.Duration `yaml:"service"  env:"SERVICE"  env-default:"30s"`
	Upstream time.Duration `yaml:"upstream" env:"UPSTREAM" env-default:"15s"`
}

// ResolvedAPIOrigin возвращает origin API для CSP.
func (c Config) ResolvedAPIOrigin() string {
	if c.Security.APIOrigin != "" {
		return c.Security.APIOrigin
	}

	u, err := url.Parse(c.Upstreams.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return u.Scheme + "://" + u.Host
}

func (c *Config) validate() error {
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		return fmt.Errorf("auth ttl must be positive")
	}

	for name, raw := range map[string]string{
		"upstreams.api_url":      c.Upstreams.APIURL,
		"upstreams.frontend_url": c.Upstreams.FrontendURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: invalid url %q", name, raw)
		}
	}

	return nil
}

// MustLoad — паника при ошибке загрузки.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	done := func() (*Config, error) {
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}

		return &cfg, nil
	}

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		return done()
	}

	// 1) --config
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) только ENV
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return done()
}
