// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keys. Each is also read from the environment under the same name.
const (
	KeyPort          = "PORT"
	KeyTickInterval  = "TICK_INTERVAL"
	KeyMediaAPIKey   = "LIVEKIT_API_KEY"
	KeyMediaSecret   = "LIVEKIT_API_SECRET"
	KeyMediaURL      = "LIVEKIT_URL"
	KeyTokenTTL      = "TOKEN_TTL"
	KeyRedisAddr     = "REDIS_ADDR"
	KeyRedisDB       = "REDIS_DB"
	KeyJournalQueue  = "JOURNAL_QUEUE"
	KeyRoomIdleTTL   = "ROOM_IDLE_TTL"
	KeySweepInterval = "SWEEP_INTERVAL"
	KeyOrigins       = "ALLOWED_ORIGINS"
	KeyCORSSoft      = "CORS_SOFT"
	KeyChatRate      = "CHAT_RATE"
	KeyChatBurst     = "CHAT_BURST"
	KeyLogLevel      = "LOG_LEVEL"
	KeyLogFormat     = "LOG_FORMAT"
)

// Config is the server configuration after defaults and environment have
// been applied.
type Config struct {
	Port         string
	TickInterval time.Duration

	MediaAPIKey string
	MediaSecret string
	MediaURL    string
	TokenTTL    time.Duration

	RedisAddr    string
	RedisDB      int
	JournalQueue string

	RoomIdleTTL   time.Duration
	SweepInterval int

	AllowedOrigins []string
	CORSSoft       bool

	ChatRate  float64
	ChatBurst int

	LogLevel  string
	LogFormat string
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyTickInterval, time.Second)
	v.SetDefault(KeyMediaURL, "")
	v.SetDefault(KeyTokenTTL, 6*time.Hour)
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyJournalQueue, "show_events")
	v.SetDefault(KeyRoomIdleTTL, time.Duration(0))
	v.SetDefault(KeySweepInterval, 60)
	v.SetDefault(KeyOrigins, []string{"*"})
	v.SetDefault(KeyCORSSoft, true)
	v.SetDefault(KeyChatRate, 5.0)
	v.SetDefault(KeyChatBurst, 10)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	_ = v.BindEnv(KeyMediaAPIKey)
	_ = v.BindEnv(KeyMediaSecret)
}

// Load builds a Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:           v.GetString(KeyPort),
		TickInterval:   v.GetDuration(KeyTickInterval),
		MediaAPIKey:    v.GetString(KeyMediaAPIKey),
		MediaSecret:    v.GetString(KeyMediaSecret),
		MediaURL:       v.GetString(KeyMediaURL),
		TokenTTL:       v.GetDuration(KeyTokenTTL),
		RedisAddr:      v.GetString(KeyRedisAddr),
		RedisDB:        v.GetInt(KeyRedisDB),
		JournalQueue:   v.GetString(KeyJournalQueue),
		RoomIdleTTL:    v.GetDuration(KeyRoomIdleTTL),
		SweepInterval:  v.GetInt(KeySweepInterval),
		AllowedOrigins: splitList(v.GetStringSlice(KeyOrigins)),
		CORSSoft:       v.GetBool(KeyCORSSoft),
		ChatRate:       v.GetFloat64(KeyChatRate),
		ChatBurst:      v.GetInt(KeyChatBurst),
		LogLevel:       v.GetString(KeyLogLevel),
		LogFormat:      v.GetString(KeyLogFormat),
	}

	if cfg.Port == "" {
		return cfg, fmt.Errorf("%s must not be empty", KeyPort)
	}
	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("%s must be positive, got %s", KeyTickInterval, cfg.TickInterval)
	}
	if cfg.RoomIdleTTL < 0 {
		return cfg, fmt.Errorf("%s must not be negative, got %s", KeyRoomIdleTTL, cfg.RoomIdleTTL)
	}
	if cfg.ChatRate <= 0 || cfg.ChatBurst <= 0 {
		return cfg, fmt.Errorf("%s and %s must be positive", KeyChatRate, KeyChatBurst)
	}
	return cfg, nil
}

// MediaConfigured reports whether token minting can work.
func (c Config) MediaConfigured() bool {
	return c.MediaAPIKey != "" && c.MediaSecret != ""
}

// splitList accepts both repeated values and a single comma separated env
// value such as "https://a.example,https://b.example".
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
