// Package config 提供配置管理
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Solver   SolverConfig   `yaml:"solver"`
	Runner   RunnerConfig   `yaml:"runner"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SolverConfig 求解器配置
type SolverConfig struct {
	TimeLimit          time.Duration `yaml:"time_limit"`    // 求解墙钟时间上限
	Workers            int           `yaml:"workers"`       // 并行搜索工作器数量
	Reproducible       bool          `yaml:"reproducible"`  // 可复现模式（固定随机种子）
	RandomSeed         int64         `yaml:"random_seed"`   // 可复现模式使用的种子
	PhaseSaving        bool          `yaml:"phase_saving"`  // 相位保存
	Presolve           bool          `yaml:"presolve"`      // 预求解
	ProbingLevel       int           `yaml:"probing_level"` // 探测级别
	SymmetryLevel      int           `yaml:"symmetry_level"`
	LinearizationLevel int           `yaml:"linearization_level"`
}

// RunnerConfig 批处理配置
type RunnerConfig struct {
	MaxParallel int `yaml:"max_parallel"` // 同时运行的排班进程数
}

// Settings 单次求解的业务设置
type Settings struct {
	AdmissaoProporcional     string // "floor" / "ceil"
	FSpecialDay              bool
	FreeSundaysPlusC2D       bool // 保留的开关，约束代码不消费
	MaxContinuousWorkingDays int
}

// DefaultSettings 返回默认业务设置
func DefaultSettings() Settings {
	return Settings{
		AdmissaoProporcional:     "floor",
		FSpecialDay:              false,
		FreeSundaysPlusC2D:       false,
		MaxContinuousWorkingDays: 6,
	}
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	workers := getEnvInt("SOLVER_WORKERS", 8)
	if workers > runtime.NumCPU() {
		workers = runtime.NumCPU()
	}

	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "salsa"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "salsa"),
			User:            getEnv("DB_USER", "salsa"),
			Password:        getEnv("DB_PASSWORD", "salsa123"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Solver: SolverConfig{
			TimeLimit:          getEnvDuration("SOLVER_TIME_LIMIT", 600*time.Second),
			Workers:            workers,
			Reproducible:       getEnvBool("SOLVER_REPRODUCIBLE", false),
			RandomSeed:         int64(getEnvInt("SOLVER_RANDOM_SEED", 42)),
			PhaseSaving:        getEnvBool("SOLVER_PHASE_SAVING", true),
			Presolve:           getEnvBool("SOLVER_PRESOLVE", true),
			ProbingLevel:       getEnvInt("SOLVER_PROBING_LEVEL", 3),
			SymmetryLevel:      getEnvInt("SOLVER_SYMMETRY_LEVEL", 4),
			LinearizationLevel: getEnvInt("SOLVER_LINEARIZATION_LEVEL", 2),
		},
		Runner: RunnerConfig{
			MaxParallel: getEnvInt("RUNNER_MAX_PARALLEL", 4),
		},
	}

	return cfg, nil
}

// LoadSettings 从环境变量加载业务设置
func LoadSettings() Settings {
	s := DefaultSettings()
	s.AdmissaoProporcional = getEnv("SALSA_ADMISSAO_PROPORCIONAL", s.AdmissaoProporcional)
	if s.AdmissaoProporcional != "floor" && s.AdmissaoProporcional != "ceil" {
		s.AdmissaoProporcional = "floor"
	}
	s.FSpecialDay = getEnvBool("SALSA_F_SPECIAL_DAY", s.FSpecialDay)
	s.FreeSundaysPlusC2D = getEnvBool("SALSA_FREE_SUNDAYS_PLUS_C2D", s.FreeSundaysPlusC2D)
	s.MaxContinuousWorkingDays = getEnvInt("SALSA_MAX_CONTINUOUS_WORKING_DAYS", s.MaxContinuousWorkingDays)
	return s
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// 辅助函数
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
