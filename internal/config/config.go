package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers aceitos para o armazenamento das coleções.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port           int
	StoreDriver    string
	DBDSN          string
	RedisURL       string
	RedisPrefix    string
	JWTSecret      string
	JWTAccessTTL   time.Duration
	AllowOrigins   []string
	RateLimitLogin RateLimitConfig
	RateLimitAuth  RateLimitConfig
	MaxUploadBytes int64
	Assistant      AssistantConfig
	Geo            GeoConfig
	Bootstrap      BootstrapConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// AssistantConfig configura o gerador de descrições e o chat de RH.
type AssistantConfig struct {
	APIKey    string
	Model     string
	ChatModel string
	Timeout   time.Duration
}

// GeoConfig configura a consulta de estados e municípios.
type GeoConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// BootstrapConfig define as senhas das contas embutidas.
type BootstrapConfig struct {
	AdminPassword      string
	SuperAdminPassword string
}

// Load carrega variáveis de ambiente e aplica defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	if err := loadStore(cfg); err != nil {
		return nil, err
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	cfg.RateLimitLogin = RateLimitConfig{RequestsPerSecond: 2, Burst: 10}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, errors.New("MAX_UPLOAD_BYTES inválido")
	}
	cfg.MaxUploadBytes = maxUpload

	assistantTimeout, err := parseDurationEnv("ASSISTANT_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Assistant = AssistantConfig{
		APIKey:    strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		Model:     strings.TrimSpace(getEnv("GEMINI_MODEL", "gemini-2.5-flash")),
		ChatModel: strings.TrimSpace(getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-pro")),
		Timeout:   assistantTimeout,
	}

	geoTTL, err := parseDurationEnv("GEO_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Geo = GeoConfig{
		BaseURL:  strings.TrimRight(strings.TrimSpace(getEnv("IBGE_BASE_URL", "https://servicodados.ibge.gov.br/api/v1/localidades")), "/"),
		CacheTTL: geoTTL,
	}

	return cfg, nil
}

// LoadStore carrega apenas armazenamento e contas embutidas, usado pela CLI.
func LoadStore() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := loadStore(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadStore(cfg *Config) error {
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMemory)))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = StoreMemory
	}
	cfg.DBDSN = strings.TrimSpace(getEnv("DB_DSN", ""))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	cfg.RedisPrefix = getEnv("REDIS_PREFIX", "portal:")

	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.DBDSN == "" {
			return errors.New("DB_DSN obrigatório para STORE_DRIVER=postgres")
		}
	case StoreRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL obrigatório para STORE_DRIVER=redis")
		}
	default:
		return errors.New("STORE_DRIVER inválido (memory, postgres ou redis)")
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin"),
		SuperAdminPassword: getEnv("SUPERADMIN_PASSWORD", "Coutinho@89"),
	}
	if cfg.Bootstrap.AdminPassword == "" || cfg.Bootstrap.SuperAdminPassword == "" {
		return errors.New("senhas das contas embutidas não podem ser vazias")
	}

	return nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}
