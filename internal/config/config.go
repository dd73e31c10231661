package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Run modes
const (
	ModeOneShot = "oneshot"
	ModeDaemon  = "daemon"
)

// DefaultWakeInterval is the daemon cycle period
const DefaultWakeInterval = 10 * time.Minute

// Config holds all configuration for the application
type Config struct {
	Hass     HassConfig
	Display  DisplayConfig
	Wake     WakeConfig
	Redis    RedisConfig
	Server   ServerConfig
	Secrets  SecretsConfig
	Mode     string
	DeviceID string
	LogLevel string
}

// HassConfig holds Home Assistant state endpoint configuration
type HassConfig struct {
	Endpoint        string
	Token           string
	SealedTokenB64  string // tink AEAD ciphertext of the token, base64
	Timeout         time.Duration
	MaxResponseSize int64
}

// DisplayConfig holds panel and rendering configuration
type DisplayConfig struct {
	Driver       string // png | waveshare2in13v4
	Profile      string
	ProfilesPath string
	OutputPath   string // PNG output for the png driver
	SPIPort      string
	PageHeight   int // overrides the profile when > 0
	GlyphsPath   string
	FontBookPath string
	FontBoldPath string
	FontDPI      float64
	Title        string
}

// WakeConfig holds wake counter and cycle configuration
type WakeConfig struct {
	Store            string // file | redis | memory
	StatePath        string
	RedisKey         string
	FullRefreshEvery int
	Interval         time.Duration
}

// RedisConfig holds Redis-related configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Publish  bool
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Enabled      bool
	Port         int
	ReadTimeout  int
	WriteTimeout int
}

// SecretsConfig holds the tink keysets used to unseal the Home Assistant token
type SecretsConfig struct {
	KeysetB64              string // Base64 encoded AEAD keyset
	KeyEncryptionKeysetB64 string // Base64 encoded cleartext keyset protecting KeysetB64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Hass: HassConfig{
			Endpoint:        getEnv("HASS_ENDPOINT", "http://homeassistant.lan/api/states/sensor.epaper_esp8266_data"),
			Token:           getEnv("HASS_TOKEN", ""),
			SealedTokenB64:  getEnv("HASS_TOKEN_SEALED_B64", ""),
			Timeout:         getEnvAsDuration("HASS_TIMEOUT", 15*time.Second),
			MaxResponseSize: int64(getEnvAsInt("HASS_MAX_RESPONSE_BYTES", 64<<10)),
		},
		Display: DisplayConfig{
			Driver:       getEnv("DISPLAY_DRIVER", "png"),
			Profile:      getEnv("DISPLAY_PROFILE", "epd75-bw"),
			ProfilesPath: getEnv("DISPLAY_PROFILES_PATH", "/etc/epaper/profiles"),
			OutputPath:   getEnv("DISPLAY_OUTPUT_PATH", "/var/lib/epaper/frame.png"),
			SPIPort:      getEnv("DISPLAY_SPI_PORT", ""),
			PageHeight:   getEnvAsInt("DISPLAY_PAGE_HEIGHT", 0),
			GlyphsPath:   getEnv("DISPLAY_GLYPHS_PATH", "/usr/share/epaper/glyphs"),
			FontBookPath: getEnv("DISPLAY_FONT_BOOK", ""),
			FontBoldPath: getEnv("DISPLAY_FONT_BOLD", ""),
			FontDPI:      getEnvAsFloat("DISPLAY_FONT_DPI", 141),
			Title:        getEnv("DISPLAY_TITLE", "WETTER"),
		},
		Wake: WakeConfig{
			Store:            getEnv("WAKE_STORE", "file"),
			StatePath:        getEnv("WAKE_STATE_PATH", "/run/epaper/wake.json"),
			RedisKey:         getEnv("WAKE_REDIS_KEY", "epaper:wake_state"),
			FullRefreshEvery: getEnvAsInt("FULL_REFRESH_EVERY", 12),
			Interval:         getEnvAsDuration("WAKE_INTERVAL", DefaultWakeInterval),
		},
		Redis: RedisConfig{
			Addr:     getRedisAddr(),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Publish:  getEnvAsBool("REDIS_PUBLISH", false),
		},
		Server: ServerConfig{
			Enabled:      getEnvAsBool("SERVER_ENABLED", true),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Secrets: SecretsConfig{
			KeysetB64:              getEnv("SECRETS_KEYSET_B64", ""),
			KeyEncryptionKeysetB64: getEnv("SECRETS_KEY_ENCRYPTION_KEYSET_B64", ""),
		},
		Mode:     getEnv("RUN_MODE", ModeOneShot),
		DeviceID: getEnv("DEVICE_ID", defaultDeviceID()),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.Wake.FullRefreshEvery <= 0 {
		cfg.Wake.FullRefreshEvery = 12
	}
	if cfg.Wake.Interval <= 0 {
		cfg.Wake.Interval = DefaultWakeInterval
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getRedisAddr prefers REDIS_URL (with or without redis://) over REDIS_ADDR
func getRedisAddr() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return strings.TrimPrefix(url, "redis://")
	}
	return getEnv("REDIS_ADDR", "localhost:6379")
}

func defaultDeviceID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		return "epaper"
	}
	return hostname
}
