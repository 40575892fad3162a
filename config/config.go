package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/fortresslabs/fortress/strategy"
)

// Config holds all application configuration.
type Config struct {
	Risk struct {
		DailyTarget float64 `yaml:"daily_target"`
		DailyStop   float64 `yaml:"daily_stop"` // negative
	} `yaml:"risk"`
	Strategy struct {
		Underlyings []string           `yaml:"underlyings"`
		Overrides   []UnderlyingParams `yaml:"overrides"`
		Default     UnderlyingParams   `yaml:"default"`
	} `yaml:"strategy"`
	Journal struct {
		TradeLog string `yaml:"trade_log"`
	} `yaml:"journal"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		SentimentCron string `yaml:"sentiment_cron"`
		CandleCron    string `yaml:"candle_cron"`
	} `yaml:"schedule"`
	Zones struct {
		File string `yaml:"file"`
	} `yaml:"zones"`
}

// UnderlyingParams configures option parameters for underlyings whose
// root contains Match. An empty Match is the default bucket.
type UnderlyingParams struct {
	Match       string `yaml:"match,omitempty"`
	StrikeStep  int64  `yaml:"strike_step"`
	SpreadWidth int64  `yaml:"spread_width"`
	LotSize     int64  `yaml:"lot_size"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields pure defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("TRADE_LOG"); v != "" {
		cfg.Journal.TradeLog = v
	}
	if v := os.Getenv("ZONES_FILE"); v != "" {
		cfg.Zones.File = v
	}
	if v := os.Getenv("DAILY_TARGET"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.DailyTarget = x
		}
	}
	if v := os.Getenv("DAILY_STOP"); v != "" {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.DailyStop = x
		}
	}

	// Defaults
	if cfg.Risk.DailyTarget == 0 {
		cfg.Risk.DailyTarget = 1000
	}
	if cfg.Risk.DailyStop == 0 {
		cfg.Risk.DailyStop = -750
	}
	if len(cfg.Strategy.Underlyings) == 0 {
		cfg.Strategy.Underlyings = []string{"NIFTY"}
	}
	if cfg.Strategy.Default == (UnderlyingParams{}) {
		def := strategy.DefaultConfig()
		cfg.Strategy.Default = UnderlyingParams{
			StrikeStep:  def.Default.StrikeStep,
			SpreadWidth: def.Default.SpreadWidth,
			LotSize:     def.Default.LotSize,
		}
		for _, o := range def.Overrides {
			cfg.Strategy.Overrides = append(cfg.Strategy.Overrides, UnderlyingParams{
				Match:       o.Match,
				StrikeStep:  o.Params.StrikeStep,
				SpreadWidth: o.Params.SpreadWidth,
				LotSize:     o.Params.LotSize,
			})
		}
	}
	if cfg.Journal.TradeLog == "" {
		cfg.Journal.TradeLog = "data/trade_log.csv"
	}
	if cfg.Zones.File == "" {
		cfg.Zones.File = "data/zones.json"
	}
	if cfg.Schedule.SentimentCron == "" {
		cfg.Schedule.SentimentCron = "0 */3 * * * *" // every 3 minutes
	}
	if cfg.Schedule.CandleCron == "" {
		cfg.Schedule.CandleCron = "5 * * * * *" // 5s past each minute boundary
	}

	return cfg, nil
}

// Validate checks the loaded configuration for coherence.
func (c *Config) Validate() error {
	if c.Risk.DailyTarget <= 0 {
		return fmt.Errorf("risk.daily_target must be positive")
	}
	if c.Risk.DailyStop >= 0 {
		return fmt.Errorf("risk.daily_stop must be negative")
	}
	if c.Journal.TradeLog == "" {
		return fmt.Errorf("journal.trade_log is required")
	}
	if c.Zones.File == "" {
		return fmt.Errorf("zones.file is required")
	}
	for i, o := range c.Strategy.Overrides {
		if o.Match == "" {
			return fmt.Errorf("strategy.overrides[%d]: match is required", i)
		}
		if err := validateParams(o); err != nil {
			return fmt.Errorf("strategy.overrides[%d]: %w", i, err)
		}
	}
	if err := validateParams(c.Strategy.Default); err != nil {
		return fmt.Errorf("strategy.default: %w", err)
	}
	return nil
}

func validateParams(p UnderlyingParams) error {
	if p.StrikeStep <= 0 {
		return fmt.Errorf("strike_step must be positive")
	}
	if p.SpreadWidth <= 0 {
		return fmt.Errorf("spread_width must be positive")
	}
	if p.SpreadWidth%p.StrikeStep != 0 {
		return fmt.Errorf("spread_width %d is not a multiple of strike_step %d", p.SpreadWidth, p.StrikeStep)
	}
	if p.LotSize <= 0 {
		return fmt.Errorf("lot_size must be positive")
	}
	return nil
}

// StrategyConfig converts the YAML shape into the engine's Config.
func (c *Config) StrategyConfig() strategy.Config {
	out := strategy.Config{
		Default: strategy.Params{
			StrikeStep:  c.Strategy.Default.StrikeStep,
			SpreadWidth: c.Strategy.Default.SpreadWidth,
			LotSize:     c.Strategy.Default.LotSize,
		},
	}
	for _, o := range c.Strategy.Overrides {
		out.Overrides = append(out.Overrides, strategy.Override{
			Match: o.Match,
			Params: strategy.Params{
				StrikeStep:  o.StrikeStep,
				SpreadWidth: o.SpreadWidth,
				LotSize:     o.LotSize,
			},
		})
	}
	return out
}
