package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"earnings-bot/models"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	Rules    models.ProgramRules
	Snapshot SnapshotConfig
	R2       R2Config
}

type ServerConfig struct {
	Port           string
	ServiceToken   string
	AllowedOrigins string
}

type DatabaseConfig struct {
	URL string // empty: in-memory only
}

type TelegramConfig struct {
	BotToken    string
	PollTimeout time.Duration
}

type SnapshotConfig struct {
	Interval time.Duration
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	ExportPrefix    string
	ExportInterval  time.Duration
}

// Enabled reports whether withdrawal exports to R2 are configured.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	rules, err := loadRules()
	if err != nil {
		return nil, err
	}

	pollTimeout, err := getDuration("TELEGRAM_POLL_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	interval, err := getDuration("SNAPSHOT_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	exportInterval, err := getDuration("R2_EXPORT_INTERVAL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			ServiceToken:   getEnv("SERVICE_TOKEN", ""),
			AllowedOrigins: normalizeOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			PollTimeout: pollTimeout,
		},
		Rules: rules,
		Snapshot: SnapshotConfig{
			Interval: interval,
		},
		R2: R2Config{
			AccountID:       getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          getEnv("R2_BUCKET_NAME", ""),
			ExportPrefix:    getEnv("R2_EXPORT_PREFIX", "withdrawals"),
			ExportInterval:  exportInterval,
		},
	}
	return cfg, nil
}

func loadRules() (models.ProgramRules, error) {
	rules := models.DefaultProgramRules()
	var err error
	if rules.MinWithdrawalPoints, err = getInt("MIN_WITHDRAWAL_POINTS", rules.MinWithdrawalPoints); err != nil {
		return rules, err
	}
	if rules.ReferralBonusChance, err = getFloat("REFERRAL_BONUS_CHANCE", rules.ReferralBonusChance); err != nil {
		return rules, err
	}
	if rules.ReferralBonusRate, err = getFloat("REFERRAL_BONUS_RATE", rules.ReferralBonusRate); err != nil {
		return rules, err
	}
	if rules.SignupBonus, err = getInt("SIGNUP_BONUS", rules.SignupBonus); err != nil {
		return rules, err
	}
	if rules.ReferrerBonus, err = getInt("REFERRER_BONUS", rules.ReferrerBonus); err != nil {
		return rules, err
	}
	if err := rules.Validate(); err != nil {
		return rules, err
	}
	return rules, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, def int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, def float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return v, nil
}

// normalizeOrigins trims the comma separated list for fiber's CORS config.
func normalizeOrigins(raw string) string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
