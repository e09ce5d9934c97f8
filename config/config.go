package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the top-level service configuration.
type Config struct {
	ServerConfig   ServerConfig   `json:"server"`
	AnalysisConfig AnalysisConfig `json:"analysis"`
	RedisConfig    RedisConfig    `json:"redis"`
	DatabaseConfig DatabaseConfig `json:"database"`
	LoggingConfig  LoggingConfig  `json:"logging"`
}

type ServerConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	AuthToken string `json:"auth_token"` // shared secret for the X-Auth-Token header
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	TTLSecs  int    `json:"ttl_seconds"` // analysis cache TTL
}

type DatabaseConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"` // postgres connection string
}

type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Pretty bool   `json:"pretty"` // console writer instead of JSON
}

// AnalysisConfig holds every detector threshold. These are configuration
// constants, not behavior: tests override them without touching detector
// logic. Zero values are replaced by the documented defaults below.
type AnalysisConfig struct {
	// Indicator periods.
	RSIPeriod  int `json:"rsi_period"`  // default 14
	ATRPeriod  int `json:"atr_period"`  // default 14
	FastSMA    int `json:"fast_sma"`    // default 20
	MediumSMA  int `json:"medium_sma"`  // default 50
	SlowSMA    int `json:"slow_sma"`    // default 200
	TrendSlope int `json:"trend_slope"` // SMA slope lookback, default 5

	// Pivots.
	PivotLookback int `json:"pivot_lookback"` // default 3

	// Gap / FVG / order block forward windows.
	GapFillWindow    int     `json:"gap_fill_window"`    // default 40 bars
	FVGWindow        int     `json:"fvg_window"`         // default 40 bars
	OrderBlockWindow int     `json:"order_block_window"` // default 40 bars
	MinGapPercent    float64 `json:"min_gap_percent"`    // default 0.1

	// Candle pattern ratios.
	DojiBodyMax    float64 `json:"doji_body_max"`    // body/range, default 0.12
	WickBodyMax    float64 `json:"wick_body_max"`    // body/range, default 0.35
	WickDominant   float64 `json:"wick_dominant"`    // wick/range, default 0.55
	WickOppositeMax float64 `json:"wick_opposite_max"` // wick/range, default 0.2

	// Displacement thresholds for order blocks.
	DisplacementATR float64 `json:"displacement_atr"` // TR multiple, default 1.5
	DisplacementVol float64 `json:"displacement_vol"` // volume multiple, default 1.5
	VolumeAvgPeriod int     `json:"volume_avg_period"` // default 20

	// RSI signal bands.
	RSIOversold   float64 `json:"rsi_oversold"`   // default 35
	RSIOverbought float64 `json:"rsi_overbought"` // default 65
	RSIWeak       float64 `json:"rsi_weak"`       // default 45
	RSIStrong     float64 `json:"rsi_strong"`     // default 55

	// Divergence policy (preserved hand-tuned integers).
	DivergenceRSIDelta float64 `json:"divergence_rsi_delta"` // default 5
	DivergenceRecency  int     `json:"divergence_recency"`   // bars, default 10

	// Liquidity sweep scan.
	SweepWindow int `json:"sweep_window"` // default 30 bars

	// Fibonacci.
	FibTolerance float64 `json:"fib_tolerance"` // confluence tolerance %, default 0.5

	// Signal synthesis.
	LevelProximityPct float64 `json:"level_proximity_pct"` // default 1.0
	MaxSignals        int     `json:"max_signals"`         // default 12
	ScanCap           int     `json:"scan_cap"`            // per-detector cap, default 10

	// Outlook.
	NewsBound      float64 `json:"news_bound"`       // bias nudge clamp, default 10
	HighVolRatio   float64 `json:"high_vol_ratio"`   // ATR/close, default 0.08
	LowVolRatio    float64 `json:"low_vol_ratio"`    // ATR/close, default 0.02
	SweepRecency   int     `json:"sweep_recency"`    // bars counted as recent, default 5
	LiquidityAGrade float64 `json:"liquidity_a_grade"` // avg turnover for grade A, default 1e6
	LiquidityBGrade float64 `json:"liquidity_b_grade"` // avg turnover for grade B, default 1e5
}

// DefaultAnalysis returns the documented default thresholds.
func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		RSIPeriod:  14,
		ATRPeriod:  14,
		FastSMA:    20,
		MediumSMA:  50,
		SlowSMA:    200,
		TrendSlope: 5,

		PivotLookback: 3,

		GapFillWindow:    40,
		FVGWindow:        40,
		OrderBlockWindow: 40,
		MinGapPercent:    0.1,

		DojiBodyMax:     0.12,
		WickBodyMax:     0.35,
		WickDominant:    0.55,
		WickOppositeMax: 0.2,

		DisplacementATR: 1.5,
		DisplacementVol: 1.5,
		VolumeAvgPeriod: 20,

		RSIOversold:   35,
		RSIOverbought: 65,
		RSIWeak:       45,
		RSIStrong:     55,

		DivergenceRSIDelta: 5,
		DivergenceRecency:  10,

		SweepWindow: 30,

		FibTolerance: 0.5,

		LevelProximityPct: 1.0,
		MaxSignals:        12,
		ScanCap:           10,

		NewsBound:       10,
		HighVolRatio:    0.08,
		LowVolRatio:     0.02,
		SweepRecency:    5,
		LiquidityAGrade: 1_000_000,
		LiquidityBGrade: 100_000,
	}
}

// Load reads config.json (path overridable via CONFIG_PATH), fills
// defaults, and applies environment overrides for deploy-time values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerConfig:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		AnalysisConfig: DefaultAnalysis(),
		RedisConfig:    RedisConfig{Addr: "localhost:6379", TTLSecs: 300},
		LoggingConfig:  LoggingConfig{Level: "info"},
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.json"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.AnalysisConfig = cfg.AnalysisConfig.withDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.ServerConfig.Port = port
		}
	}
	if v := os.Getenv("AUTH_TOKEN"); v != "" {
		c.ServerConfig.AuthToken = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisConfig.Enabled = true
		c.RedisConfig.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseConfig.Enabled = true
		c.DatabaseConfig.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LoggingConfig.Level = v
	}
}

func (a AnalysisConfig) withDefaults() AnalysisConfig {
	d := DefaultAnalysis()
	if a.RSIPeriod <= 0 {
		a.RSIPeriod = d.RSIPeriod
	}
	if a.ATRPeriod <= 0 {
		a.ATRPeriod = d.ATRPeriod
	}
	if a.FastSMA <= 0 {
		a.FastSMA = d.FastSMA
	}
	if a.MediumSMA <= 0 {
		a.MediumSMA = d.MediumSMA
	}
	if a.SlowSMA <= 0 {
		a.SlowSMA = d.SlowSMA
	}
	if a.TrendSlope <= 0 {
		a.TrendSlope = d.TrendSlope
	}
	if a.PivotLookback <= 0 {
		a.PivotLookback = d.PivotLookback
	}
	if a.GapFillWindow <= 0 {
		a.GapFillWindow = d.GapFillWindow
	}
	if a.FVGWindow <= 0 {
		a.FVGWindow = d.FVGWindow
	}
	if a.OrderBlockWindow <= 0 {
		a.OrderBlockWindow = d.OrderBlockWindow
	}
	if a.MinGapPercent <= 0 {
		a.MinGapPercent = d.MinGapPercent
	}
	if a.DojiBodyMax <= 0 {
		a.DojiBodyMax = d.DojiBodyMax
	}
	if a.WickBodyMax <= 0 {
		a.WickBodyMax = d.WickBodyMax
	}
	if a.WickDominant <= 0 {
		a.WickDominant = d.WickDominant
	}
	if a.WickOppositeMax <= 0 {
		a.WickOppositeMax = d.WickOppositeMax
	}
	if a.DisplacementATR <= 0 {
		a.DisplacementATR = d.DisplacementATR
	}
	if a.DisplacementVol <= 0 {
		a.DisplacementVol = d.DisplacementVol
	}
	if a.VolumeAvgPeriod <= 0 {
		a.VolumeAvgPeriod = d.VolumeAvgPeriod
	}
	if a.RSIOversold <= 0 {
		a.RSIOversold = d.RSIOversold
	}
	if a.RSIOverbought <= 0 {
		a.RSIOverbought = d.RSIOverbought
	}
	if a.RSIWeak <= 0 {
		a.RSIWeak = d.RSIWeak
	}
	if a.RSIStrong <= 0 {
		a.RSIStrong = d.RSIStrong
	}
	if a.DivergenceRSIDelta <= 0 {
		a.DivergenceRSIDelta = d.DivergenceRSIDelta
	}
	if a.DivergenceRecency <= 0 {
		a.DivergenceRecency = d.DivergenceRecency
	}
	if a.SweepWindow <= 0 {
		a.SweepWindow = d.SweepWindow
	}
	if a.FibTolerance <= 0 {
		a.FibTolerance = d.FibTolerance
	}
	if a.LevelProximityPct <= 0 {
		a.LevelProximityPct = d.LevelProximityPct
	}
	if a.MaxSignals <= 0 {
		a.MaxSignals = d.MaxSignals
	}
	if a.ScanCap <= 0 {
		a.ScanCap = d.ScanCap
	}
	if a.NewsBound <= 0 {
		a.NewsBound = d.NewsBound
	}
	if a.HighVolRatio <= 0 {
		a.HighVolRatio = d.HighVolRatio
	}
	if a.LowVolRatio <= 0 {
		a.LowVolRatio = d.LowVolRatio
	}
	if a.SweepRecency <= 0 {
		a.SweepRecency = d.SweepRecency
	}
	if a.LiquidityAGrade <= 0 {
		a.LiquidityAGrade = d.LiquidityAGrade
	}
	if a.LiquidityBGrade <= 0 {
		a.LiquidityBGrade = d.LiquidityBGrade
	}
	return a
}
