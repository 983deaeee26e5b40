package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Game      GameConfig      `mapstructure:"game"`
}

type ServerConfig struct {
	// Username identifies this participant in discovery broadcasts and
	// hosted rooms.
	Username       string `mapstructure:"username"`
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
	Debug          bool   `mapstructure:"debug"`
}

type DiscoveryConfig struct {
	Port     int           `mapstructure:"port"`
	Interval time.Duration `mapstructure:"interval"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type DatabaseConfig struct {
	// Driver selects the leaderboard store: "sqlite", "postgres" or
	// "gorm" (GORM over postgres).
	Driver     string         `mapstructure:"driver"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type GameConfig struct {
	// MoveDeadline forfeits a round for players who have not submitted a
	// move within the window. Zero disables the deadline.
	MoveDeadline time.Duration `mapstructure:"move_deadline"`
	// FinishedGrace is how long a FINISHED room stays readable before the
	// registry garbage-collects it.
	FinishedGrace time.Duration `mapstructure:"finished_grace"`
	// CommentaryURL points at the commentary generator. Empty falls back
	// to the built-in rules narrator.
	CommentaryURL string `mapstructure:"commentary_url"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":5001")
	viper.SetDefault("server.rpc_address", ":5002")
	viper.SetDefault("server.metrics_address", ":9100")
	viper.SetDefault("discovery.port", 5050)
	viper.SetDefault("discovery.interval", 2*time.Second)
	viper.SetDefault("discovery.ttl", 10*time.Second)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.sqlite_path", "./rpsls.db")
	viper.SetDefault("game.move_deadline", 60*time.Second)
	viper.SetDefault("game.finished_grace", 5*time.Minute)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
