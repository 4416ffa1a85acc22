package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Confirm ConfirmConfig `mapstructure:"confirm"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Bridge  BridgeConfig  `mapstructure:"bridge"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	APIKey   string `mapstructure:"api_key"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

// EngineConfig shapes the reflex loop itself, not the filter it runs.
type EngineConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	StatsInterval string        `mapstructure:"stats_interval"`
	CandleHistory int           `mapstructure:"candle_history"`
	AckTimeout    time.Duration `mapstructure:"ack_timeout"`
}

type ConfirmConfig struct {
	MaxSpread        float64 `mapstructure:"max_spread"`
	RequireZoneProbe bool    `mapstructure:"require_zone_probe"`
	MinZoneTicks     int     `mapstructure:"min_zone_ticks"`
	ProbeLookback    int     `mapstructure:"probe_lookback"`
	RSIOverbought    float64 `mapstructure:"rsi_overbought"`
	RSIOversold      float64 `mapstructure:"rsi_oversold"`
}

type RiskConfig struct {
	MaxTradesPerDay     int `mapstructure:"max_trades_per_day"`
	MaxConsecutiveFails int `mapstructure:"max_consecutive_fails"`
	CooldownSecs        int `mapstructure:"cooldown_secs"`
}

func (c RiskConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSecs) * time.Second
}

type BridgeConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Magic      int           `mapstructure:"magic"`
	MaxRetries int           `mapstructure:"max_retries"`
	RatePerSec float64       `mapstructure:"rate_per_sec"`
}

type MonitorConfig struct {
	SubscriberBuffer int `mapstructure:"subscriber_buffer"`
	HistoryLimit     int `mapstructure:"history_limit"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AGV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":3000")
	v.SetDefault("server.api_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:antigravity.db?cache=shared&_busy_timeout=5000")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("engine.buffer_size", 30)
	v.SetDefault("engine.stats_interval", "@every 1s")
	v.SetDefault("engine.candle_history", 120)
	v.SetDefault("engine.ack_timeout", "5s")
	v.SetDefault("confirm.max_spread", 50.0)
	v.SetDefault("confirm.require_zone_probe", true)
	v.SetDefault("confirm.min_zone_ticks", 2)
	v.SetDefault("confirm.probe_lookback", 15)
	v.SetDefault("confirm.rsi_overbought", 70.0)
	v.SetDefault("confirm.rsi_oversold", 30.0)
	v.SetDefault("risk.max_trades_per_day", 10)
	v.SetDefault("risk.max_consecutive_fails", 3)
	v.SetDefault("risk.cooldown_secs", 300)
	v.SetDefault("bridge.base_url", "mock")
	v.SetDefault("bridge.timeout", "5s")
	v.SetDefault("bridge.magic", 420001)
	v.SetDefault("bridge.max_retries", 1)
	v.SetDefault("bridge.rate_per_sec", 10.0)
	v.SetDefault("monitor.subscriber_buffer", 256)
	v.SetDefault("monitor.history_limit", 100)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
