// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken      string   `env:"DISCORD_TOKEN,required"`
	StoragePath       string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DeveloperID       string   `env:"DEVELOPER_ID"`
	ProtectedUsers    []string `env:"PROTECTED_USERS" envSeparator:","`
	GuildBlacklist    []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	MetricsAddr       string   `env:"METRICS_ADDR"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal("[ERR] Invalid configuration: ", err)
	}
	return cfg
}
