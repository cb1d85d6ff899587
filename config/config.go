package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig 游戏规则参数
type GameConfig struct {
	MinPlayers           int `mapstructure:"min_players"`
	MaxPlayers           int `mapstructure:"max_players"`
	VictoryPoints        int `mapstructure:"victory_points"`
	DiscardThreshold     int `mapstructure:"discard_threshold"`
	RobberRoll           int `mapstructure:"robber_roll"`
	KnightBonusThreshold int `mapstructure:"knight_bonus_threshold"`
	NumberOfDice         int `mapstructure:"number_of_dice"`
	DiceSides            int `mapstructure:"dice_sides"`
}

// DefaultGame returns the standard base-game rule set.
func DefaultGame() GameConfig {
	return GameConfig{
		MinPlayers:           2,
		MaxPlayers:           4,
		VictoryPoints:        10,
		DiscardThreshold:     7,
		RobberRoll:           7,
		KnightBonusThreshold: 3,
		NumberOfDice:         2,
		DiceSides:            6,
	}
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	game := DefaultGame()
	viper.SetDefault("game.min_players", game.MinPlayers)
	viper.SetDefault("game.max_players", game.MaxPlayers)
	viper.SetDefault("game.victory_points", game.VictoryPoints)
	viper.SetDefault("game.discard_threshold", game.DiscardThreshold)
	viper.SetDefault("game.robber_roll", game.RobberRoll)
	viper.SetDefault("game.knight_bonus_threshold", game.KnightBonusThreshold)
	viper.SetDefault("game.number_of_dice", game.NumberOfDice)
	viper.SetDefault("game.dice_sides", game.DiceSides)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
