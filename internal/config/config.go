package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENV"`
	DBUrl      string `mapstructure:"DB_URL"`
	RedisURL   string `mapstructure:"REDIS_URL"`

	JWTSecret        string `mapstructure:"JWT_SECRET"`
	OperatorName     string `mapstructure:"OPERATOR_NAME"`
	OperatorPassword string `mapstructure:"OPERATOR_PASSWORD"`

	SimMode        string  `mapstructure:"SIM_MODE"`      // RANDOMIZED | DIRECTED
	DistanceMode   string  `mapstructure:"DISTANCE_MODE"` // EUCLIDEAN | HAVERSINE
	SimRounds      int     `mapstructure:"SIM_ROUNDS"`
	SimVehicles    int     `mapstructure:"SIM_VEHICLES"`
	Owners         string  `mapstructure:"OWNERS"` // comma-separated owner labels
	TollRate       string  `mapstructure:"TOLL_RATE"`
	StepKm         float64 `mapstructure:"STEP_KM"`
	EpsilonKm      float64 `mapstructure:"ARRIVAL_EPSILON_KM"`
	InitialBalance string  `mapstructure:"INITIAL_BALANCE"`
	SharedLedger   bool    `mapstructure:"SHARED_LEDGER"`
	Seed           int64   `mapstructure:"SEED"`
	RegionSizeKm   float64 `mapstructure:"REGION_SIZE_KM"`
	DestX          float64 `mapstructure:"DEST_X"`
	DestY          float64 `mapstructure:"DEST_Y"`

	TickPacing time.Duration `mapstructure:"TICK_PACING"`
}

func Load() (Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("JWT_SECRET", "super_secret_dev_key_change_me")
	viper.SetDefault("OPERATOR_NAME", "operator")
	viper.SetDefault("OPERATOR_PASSWORD", "change_me")

	// Defaults mirror the classic four-vehicle, ten-round demo run.
	viper.SetDefault("SIM_MODE", "RANDOMIZED")
	viper.SetDefault("DISTANCE_MODE", "EUCLIDEAN")
	viper.SetDefault("SIM_ROUNDS", 10)
	viper.SetDefault("SIM_VEHICLES", 4)
	viper.SetDefault("OWNERS", "")
	viper.SetDefault("TOLL_RATE", "0.05")
	viper.SetDefault("STEP_KM", 4.0)
	viper.SetDefault("ARRIVAL_EPSILON_KM", 0.001)
	viper.SetDefault("INITIAL_BALANCE", "100")
	viper.SetDefault("SHARED_LEDGER", false)
	viper.SetDefault("SEED", 1)
	viper.SetDefault("REGION_SIZE_KM", 1000.0)
	viper.SetDefault("DEST_X", 10.0)
	viper.SetDefault("DEST_Y", 0.0)
	viper.SetDefault("TICK_PACING", time.Duration(0))

	if err := viper.ReadInConfig(); err != nil {
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine must refuse to start with.
func (c Config) Validate() error {
	switch c.SimMode {
	case "RANDOMIZED", "DIRECTED":
	default:
		return fmt.Errorf("SIM_MODE must be RANDOMIZED or DIRECTED, got %q", c.SimMode)
	}

	switch domain.DistanceMode(c.DistanceMode) {
	case domain.ModeEuclidean, domain.ModeHaversine:
	default:
		return fmt.Errorf("DISTANCE_MODE must be EUCLIDEAN or HAVERSINE, got %q", c.DistanceMode)
	}

	rate, err := decimal.NewFromString(c.TollRate)
	if err != nil {
		return fmt.Errorf("TOLL_RATE is not a valid amount: %v", err)
	}
	if rate.IsNegative() {
		return domain.ErrNegativeRate
	}

	balance, err := decimal.NewFromString(c.InitialBalance)
	if err != nil {
		return fmt.Errorf("INITIAL_BALANCE is not a valid amount: %v", err)
	}
	if balance.IsNegative() {
		return domain.ErrNegativeBalance
	}

	if c.StepKm <= 0 {
		return domain.ErrInvalidStep
	}
	if c.SimVehicles < 1 {
		return fmt.Errorf("SIM_VEHICLES must be at least 1, got %d", c.SimVehicles)
	}
	if c.SimRounds < 1 {
		return fmt.Errorf("SIM_ROUNDS must be at least 1, got %d", c.SimRounds)
	}

	return nil
}

// Rate returns the validated toll rate.
func (c Config) Rate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.TollRate)
	return rate
}

// Balance returns the validated per-vehicle initial balance.
func (c Config) Balance() decimal.Decimal {
	balance, _ := decimal.NewFromString(c.InitialBalance)
	return balance
}

func (c Config) Mode() domain.DistanceMode {
	return domain.DistanceMode(c.DistanceMode)
}

func (c Config) Directed() bool {
	return c.SimMode == "DIRECTED"
}

// OwnerNames returns the configured owner labels, padded with generated
// names up to the vehicle count.
func (c Config) OwnerNames() []string {
	var names []string
	if c.Owners != "" {
		for _, n := range strings.Split(c.Owners, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	for i := len(names); i < c.SimVehicles; i++ {
		names = append(names, fmt.Sprintf("owner-%d", i+1))
	}
	return names[:c.SimVehicles]
}
