package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Stock is one configured universe member.
type Stock struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Config struct {
	Server struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		Mode           string `yaml:"mode"`
		FrontendOrigin string `yaml:"frontend_origin"`
	} `yaml:"server"`
	Universe   []Stock `yaml:"universe"`
	Indicators struct {
		HistoryDays   int `yaml:"history_days"`
		SymbolDelayMs int `yaml:"symbol_delay_ms"`
	} `yaml:"indicators"`
	Sources struct {
		TimeoutSeconds  int    `yaml:"timeout_seconds"`
		UserAgent       string `yaml:"user_agent"`
		NewsLimit       int    `yaml:"news_limit"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"sources"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Broker struct {
		Provider  string `yaml:"provider"`
		Mode      string `yaml:"mode"`
		BaseURL   string `yaml:"base_url"`
		AccountNo string `yaml:"account_no"`
		Exchange  string `yaml:"exchange"`
	} `yaml:"broker"`
	AutoTrade struct {
		IntervalSeconds int    `yaml:"interval_seconds"`
		StrategiesFile  string `yaml:"strategies_file"`
		HistoryDB       string `yaml:"history_db"`
		HistoryLimit    int    `yaml:"history_limit"`
		EODSchedule     string `yaml:"eod_schedule"`
	} `yaml:"autotrade"`
	TradeLog struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"tradelog"`
}

// DefaultUniverse is the symbol set analyzed when none is configured.
var DefaultUniverse = []Stock{
	{Code: "069500", Name: "KODEX 200"},
	{Code: "229200", Name: "KODEX 코스닥150"},
	{Code: "005930", Name: "삼성전자"},
	{Code: "000660", Name: "SK하이닉스"},
	{Code: "373220", Name: "LG에너지솔루션"},
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode '%s': must be 'debug' or 'release'", c.Server.Mode)
	}
	switch c.LLM.Provider {
	case "OPENAI", "CLAUDE", "NONE":
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be 'OPENAI', 'CLAUDE' or 'NONE'", c.LLM.Provider)
	}
	switch c.Broker.Provider {
	case "MOCK", "KIWOOM", "KITE":
	default:
		return fmt.Errorf("invalid broker.provider '%s': must be 'MOCK', 'KIWOOM' or 'KITE'", c.Broker.Provider)
	}
	if c.Broker.Mode != "DRY_RUN" && c.Broker.Mode != "LIVE" {
		return fmt.Errorf("invalid broker.mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Broker.Mode)
	}
	if len(c.Universe) == 0 {
		return errors.New("universe cannot be empty")
	}
	for _, s := range c.Universe {
		if s.Code == "" {
			return errors.New("universe entries need a code")
		}
	}
	if c.LLM.TimeoutSeconds < 0 {
		return fmt.Errorf("llm.timeout_seconds must be positive, got %d", c.LLM.TimeoutSeconds)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0-2, got %.2f", c.LLM.Temperature)
	}
	return nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if len(c.Universe) == 0 {
		c.Universe = append([]Stock(nil), DefaultUniverse...)
	}
	if c.Indicators.HistoryDays == 0 {
		c.Indicators.HistoryDays = 150
	}
	if c.Indicators.SymbolDelayMs == 0 {
		c.Indicators.SymbolDelayMs = 500
	}
	if c.Sources.TimeoutSeconds == 0 {
		c.Sources.TimeoutSeconds = 10
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Sources.NewsLimit == 0 {
		c.Sources.NewsLimit = 15
	}
	if c.Sources.CacheTTLSeconds == 0 {
		c.Sources.CacheTTLSeconds = 60
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "OPENAI"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2000
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.3
	}
	if c.Broker.Provider == "" {
		c.Broker.Provider = "MOCK"
	}
	if c.Broker.Mode == "" {
		c.Broker.Mode = "DRY_RUN"
	}
	if c.Broker.BaseURL == "" {
		c.Broker.BaseURL = "https://mockapi.kiwoom.com"
	}
	if c.Broker.Exchange == "" {
		c.Broker.Exchange = "NSE"
	}
	if c.AutoTrade.IntervalSeconds == 0 {
		c.AutoTrade.IntervalSeconds = 10
	}
	if c.AutoTrade.StrategiesFile == "" {
		c.AutoTrade.StrategiesFile = "data/strategies.json"
	}
	if c.AutoTrade.HistoryDB == "" {
		c.AutoTrade.HistoryDB = "data/trades.db"
	}
	if c.AutoTrade.HistoryLimit == 0 {
		c.AutoTrade.HistoryLimit = 50
	}
	if c.AutoTrade.EODSchedule == "" {
		c.AutoTrade.EODSchedule = "40 15 * * 1-5"
	}
	if c.TradeLog.Dir == "" {
		c.TradeLog.Dir = "logs"
	}
	if c.TradeLog.RetentionDays == 0 {
		c.TradeLog.RetentionDays = 7
	}
}

// applyEnv lets deployment variables override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("FRONTEND_ORIGIN"); v != "" {
		c.Server.FrontendOrigin = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("OPENAI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.MaxTokens = n
		}
	}
}

// LoadConfig reads path, applies defaults and environment overrides, and
// validates the result. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}
