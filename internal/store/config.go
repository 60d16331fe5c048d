package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode        string `yaml:"mode"`
	PollSeconds int    `yaml:"poll_seconds"`
	Session     struct {
		Timezone         string   `yaml:"timezone"`
		Holidays         []string `yaml:"holidays"`
		WakeLeadMinutes  int      `yaml:"wake_lead_minutes"`
		SleepPollSeconds int      `yaml:"sleep_poll_seconds"`
	} `yaml:"session"`
	Universe struct {
		Static []string `yaml:"static"`
		Scan   struct {
			TopNPerSide int      `yaml:"top_n_per_side"`
			Indices     []string `yaml:"indices"`
			Filters     struct {
				MinPrice     float64 `yaml:"min_price"`
				MinVolume    float64 `yaml:"min_volume"`
				MinMarketCap float64 `yaml:"min_market_cap"`
			} `yaml:"filters"`
		} `yaml:"scan"`
	} `yaml:"universe"`
	Watchlist struct {
		Backend       string `yaml:"backend"`
		RetentionDays int    `yaml:"retention_days"`
		SQLitePath    string `yaml:"sqlite_path"`
		Redis         struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"watchlist"`
	Risk struct {
		MonthlyDrawdownHaltPct float64 `yaml:"monthly_drawdown_halt_pct"`
		PerTradeRiskPct        float64 `yaml:"per_trade_risk_pct"`
		MarginBufferPct        float64 `yaml:"margin_buffer_pct"`
		HardFloorPct           float64 `yaml:"hard_floor_pct"`
		FlattenCutoffMinutes   int     `yaml:"flatten_cutoff_minutes"`
		ExtendedLimitOffsetPct float64 `yaml:"extended_limit_offset_pct"`
		MonthMode              string  `yaml:"month_mode"`
		BaselineMode           string  `yaml:"baseline_mode"`
	} `yaml:"risk"`
	Stop struct {
		Mode    string  `yaml:"mode"`
		Pct     float64 `yaml:"pct"`
		ATRMult float64 `yaml:"atr_mult"`
		MinTick float64 `yaml:"min_tick"`
	} `yaml:"stop"`
	Indicators struct {
		MinHistory int     `yaml:"min_history"`
		SMAWindow  int     `yaml:"sma_window"`
		RSIPeriod  int     `yaml:"rsi_period"`
		BBWindow   int     `yaml:"bb_window"`
		BBStdDev   float64 `yaml:"bb_stddev"`
		ATRPeriod  int     `yaml:"atr_period"`
	} `yaml:"indicators"`
	Account struct {
		FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`
		FetchRetries        int `yaml:"fetch_retries"`
		FetchBackoffSeconds int `yaml:"fetch_backoff_seconds"`
	} `yaml:"account"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Universe.Static) == 0 {
		return errors.New("universe.static cannot be empty: it is the fallback watchlist on a cache miss")
	}
	if c.Risk.PerTradeRiskPct <= 0 || c.Risk.PerTradeRiskPct > 100 {
		return fmt.Errorf("risk.per_trade_risk_pct must be between 0-100, got %.2f", c.Risk.PerTradeRiskPct)
	}
	if c.Risk.MonthlyDrawdownHaltPct >= 0 {
		return fmt.Errorf("risk.monthly_drawdown_halt_pct must be negative, got %.2f", c.Risk.MonthlyDrawdownHaltPct)
	}
	if c.Risk.MonthMode != "CALENDAR" && c.Risk.MonthMode != "ROLLING_30D" {
		return fmt.Errorf("risk.month_mode must be 'CALENDAR' or 'ROLLING_30D', got '%s'", c.Risk.MonthMode)
	}
	if c.Risk.BaselineMode != "START_OF_DAY" && c.Risk.BaselineMode != "ROLLING" {
		return fmt.Errorf("risk.baseline_mode must be 'START_OF_DAY' or 'ROLLING', got '%s'", c.Risk.BaselineMode)
	}
	if c.Stop.Mode != "PCT" && c.Stop.Mode != "ATR" {
		return fmt.Errorf("stop.mode must be 'PCT' or 'ATR', got '%s'", c.Stop.Mode)
	}
	switch c.Watchlist.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("watchlist.backend must be 'memory', 'sqlite', or 'redis', got '%s'", c.Watchlist.Backend)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.PollSeconds == 0 {
		c.PollSeconds = 15
	}
	if c.Session.Timezone == "" {
		c.Session.Timezone = "America/New_York"
	}
	if c.Session.WakeLeadMinutes == 0 {
		c.Session.WakeLeadMinutes = 5
	}
	if c.Session.SleepPollSeconds == 0 {
		c.Session.SleepPollSeconds = 60
	}
	if c.Universe.Scan.TopNPerSide == 0 {
		c.Universe.Scan.TopNPerSide = 50
	}
	if c.Universe.Scan.Filters.MinPrice == 0 {
		c.Universe.Scan.Filters.MinPrice = 5.0
	}
	if c.Universe.Scan.Filters.MinVolume == 0 {
		c.Universe.Scan.Filters.MinVolume = 10_000_000
	}
	if c.Universe.Scan.Filters.MinMarketCap == 0 {
		c.Universe.Scan.Filters.MinMarketCap = 2_000_000_000
	}
	if c.Watchlist.Backend == "" {
		c.Watchlist.Backend = "memory"
	}
	if c.Watchlist.RetentionDays == 0 {
		c.Watchlist.RetentionDays = 30
	}
	if c.Risk.MonthlyDrawdownHaltPct == 0 {
		c.Risk.MonthlyDrawdownHaltPct = -6.0
	}
	if c.Risk.PerTradeRiskPct == 0 {
		c.Risk.PerTradeRiskPct = 2.0
	}
	if c.Risk.MarginBufferPct == 0 {
		c.Risk.MarginBufferPct = 30.0
	}
	if c.Risk.HardFloorPct == 0 {
		c.Risk.HardFloorPct = 20.0
	}
	if c.Risk.FlattenCutoffMinutes == 0 {
		c.Risk.FlattenCutoffMinutes = 10
	}
	if c.Risk.ExtendedLimitOffsetPct == 0 {
		c.Risk.ExtendedLimitOffsetPct = 0.5
	}
	if c.Risk.MonthMode == "" {
		c.Risk.MonthMode = "CALENDAR"
	}
	if c.Risk.BaselineMode == "" {
		c.Risk.BaselineMode = "START_OF_DAY"
	}
	if c.Stop.Mode == "" {
		c.Stop.Mode = "PCT"
	}
	if c.Stop.Pct == 0 {
		c.Stop.Pct = 2.0
	}
	if c.Stop.ATRMult == 0 {
		c.Stop.ATRMult = 2.0
	}
	if c.Indicators.MinHistory == 0 {
		c.Indicators.MinHistory = 20
	}
	if c.Indicators.SMAWindow == 0 {
		c.Indicators.SMAWindow = 20
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.BBWindow == 0 {
		c.Indicators.BBWindow = 20
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2.0
	}
	if c.Indicators.ATRPeriod == 0 {
		c.Indicators.ATRPeriod = 14
	}
	if c.Account.FetchTimeoutSeconds == 0 {
		c.Account.FetchTimeoutSeconds = 5
	}
	if c.Account.FetchRetries == 0 {
		c.Account.FetchRetries = 3
	}
	if c.Account.FetchBackoffSeconds == 0 {
		c.Account.FetchBackoffSeconds = 2
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
