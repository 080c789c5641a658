package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort   string `mapstructure:"APP_PORT"`
	DBURL     string `mapstructure:"DB_URL"`
	JWTSecret string `mapstructure:"JWT_SECRET"`
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisPass string `mapstructure:"REDIS_PASS"`
	RedisDB   int    `mapstructure:"REDIS_DB"`

	VAPIDPublicKey  string `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `mapstructure:"VAPID_PRIVATE_KEY"`
	// Base64 alternative for environments that cannot carry PEM newlines.
	VAPIDPrivateKeyB64 string `mapstructure:"VAPID_PRIVATE_KEY_B64"`
	VAPIDSubject       string `mapstructure:"VAPID_SUBJECT"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	FamilyChatID     int64  `mapstructure:"FAMILY_CHAT_ID"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.resolveVAPID(); err != nil {
		return config, err
	}

	if config.AppPort == "" {
		config.AppPort = "8080"
	}
	if config.VAPIDSubject == "" {
		config.VAPIDSubject = "mailto:pocketkid@example.com"
	}

	return config, nil
}

// resolveVAPID normalizes the push key material. Missing keys abort startup;
// they are not a steady-state error.
func (c *Config) resolveVAPID() error {
	c.VAPIDPublicKey = strings.TrimSpace(c.VAPIDPublicKey)
	c.VAPIDPrivateKey = strings.ReplaceAll(strings.TrimSpace(c.VAPIDPrivateKey), `\n`, "\n")

	if c.VAPIDPrivateKey == "" && c.VAPIDPrivateKeyB64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.VAPIDPrivateKeyB64))
		if err != nil {
			return fmt.Errorf("failed to decode VAPID_PRIVATE_KEY_B64: %w", err)
		}
		c.VAPIDPrivateKey = string(decoded)
	}

	if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
		return errors.New("missing VAPID keys: set VAPID_PUBLIC_KEY with either VAPID_PRIVATE_KEY or VAPID_PRIVATE_KEY_B64")
	}
	return nil
}
