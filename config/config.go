package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 部署级配置；ArenaSize 决定新对局的竞技场容量
type Config struct {
	Addr           string
	TickRate       int
	ArenaSize      int
	DictionaryPath string

	LogFile    string
	LogLevel   string
	LogConsole bool

	TokenSecret  string
	TokenTTL     time.Duration
	RequireToken bool

	DBPath string

	InputRate   float64 // 每连接每秒允许的动作数
	InputBurst  int
	IdleTimeout time.Duration
}

// Default 未配置时的取值
func Default() Config {
	return Config{
		Addr:        ":7636",
		TickRate:    20,
		ArenaSize:   7,
		LogFile:     "app.log",
		LogLevel:    "info",
		TokenTTL:    5 * time.Minute,
		DBPath:      "wordfight.db",
		InputRate:   30,
		InputBurst:  10,
		IdleTimeout: 60 * time.Second,
	}
}

// Load 依次叠加：默认值 -> .env 文件（不存在不算错）-> WORDFIGHT_* 环境变量 -> 命令行参数
func Load(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	fset := flag.NewFlagSet("wordfight", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :7636")
	fset.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "simulation ticks per second")
	fset.IntVar(&cfg.ArenaSize, "arena-size", cfg.ArenaSize, "arena capacity for new matches")
	fset.StringVar(&cfg.DictionaryPath, "dictionary", cfg.DictionaryPath, "newline separated word list; empty disables the prefix rule")
	fset.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rolling log file path")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fset.BoolVar(&cfg.LogConsole, "log-console", cfg.LogConsole, "also log to stdout")
	fset.BoolVar(&cfg.RequireToken, "require-token", cfg.RequireToken, "reject websocket sessions without a bootstrap token")
	fset.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite path for match results; empty disables")
	if err := fset.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查配置取值范围
func (c Config) Validate() error {
	if c.ArenaSize < 2 {
		return fmt.Errorf("arena size %d: must be at least 2", c.ArenaSize)
	}
	if c.TickRate < 1 || c.TickRate > 120 {
		return fmt.Errorf("tick rate %d: must be within 1..120", c.TickRate)
	}
	if c.RequireToken && c.TokenSecret == "" {
		return errors.New("require token set but WORDFIGHT_TOKEN_SECRET is empty")
	}
	if c.InputRate <= 0 || c.InputBurst <= 0 {
		return fmt.Errorf("input rate %.2f burst %d: must be positive", c.InputRate, c.InputBurst)
	}
	return nil
}

// TickInterval 每个 tick 的时长
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c *Config) applyEnv() error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			b, perr := strconv.ParseBool(v)
			if perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok && err == nil {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
				return
			}
			*dst = d
		}
	}

	str("WORDFIGHT_ADDR", &c.Addr)
	num("WORDFIGHT_TICK_RATE", &c.TickRate)
	num("WORDFIGHT_ARENA_SIZE", &c.ArenaSize)
	str("WORDFIGHT_DICTIONARY", &c.DictionaryPath)
	str("WORDFIGHT_LOG_FILE", &c.LogFile)
	str("WORDFIGHT_LOG_LEVEL", &c.LogLevel)
	boolean("WORDFIGHT_LOG_CONSOLE", &c.LogConsole)
	str("WORDFIGHT_TOKEN_SECRET", &c.TokenSecret)
	duration("WORDFIGHT_TOKEN_TTL", &c.TokenTTL)
	boolean("WORDFIGHT_REQUIRE_TOKEN", &c.RequireToken)
	str("WORDFIGHT_DB", &c.DBPath)
	num("WORDFIGHT_INPUT_BURST", &c.InputBurst)
	duration("WORDFIGHT_IDLE_TIMEOUT", &c.IdleTimeout)
	if v, ok := os.LookupEnv("WORDFIGHT_INPUT_RATE"); ok && err == nil {
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("WORDFIGHT_INPUT_RATE: %w", perr)
		}
		c.InputRate = f
	}
	return err
}
