package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const appName = "lazydb"

// Config holds all application configuration
type Config struct {
	UI      UIConfig      `mapstructure:"ui"`
	Data    DataConfig    `mapstructure:"data"`
	Table   TableConfig   `mapstructure:"table"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
}

type UIConfig struct {
	Theme           string `mapstructure:"theme"`
	MouseEnabled    bool   `mapstructure:"mouse_enabled"`
	PanelWidthRatio int    `mapstructure:"panel_width_ratio"`
}

type DataConfig struct {
	PageSize             int  `mapstructure:"page_size"`
	MaxCellDisplayLength int  `mapstructure:"max_cell_display_length"`
	JSONBAutoFormat      bool `mapstructure:"jsonb_auto_format"`
	QueryTimeout         int  `mapstructure:"query_timeout"`
	ConnectionPoolSize   int  `mapstructure:"connection_pool_size"`
}

// TableConfig tunes the virtualized table engine.
type TableConfig struct {
	Virtualize      string `mapstructure:"virtualize"`
	MinRows         int    `mapstructure:"min_rows"`
	MinCells        int    `mapstructure:"min_cells"`
	Overscan        int    `mapstructure:"overscan"`
	BaseRowHeight   int    `mapstructure:"base_row_height"`
	MinRowHeight    int    `mapstructure:"min_row_height"`
	MaxWindowRows   int    `mapstructure:"max_window_rows"`
	FrameIntervalMs int    `mapstructure:"frame_interval_ms"`
	MaxCellWidth    int    `mapstructure:"max_cell_width"`
	MaxRowLines     int    `mapstructure:"max_row_lines"`
}

// FrameInterval is the delay between a scroll event and the frame it
// schedules.
func (t TableConfig) FrameInterval() time.Duration {
	if t.FrameIntervalMs <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(t.FrameIntervalMs) * time.Millisecond
}

type StorageConfig struct {
	ViewStatePath string `mapstructure:"viewstate_path"`
	Persist       bool   `mapstructure:"persist"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:           "default",
			MouseEnabled:    true,
			PanelWidthRatio: 25,
		},
		Data: DataConfig{
			PageSize:             1000,
			MaxCellDisplayLength: 100,
			JSONBAutoFormat:      true,
			QueryTimeout:         30000,
			ConnectionPoolSize:   10,
		},
		Table: TableConfig{
			Virtualize:      "auto",
			MinRows:         300,
			MinCells:        12000,
			Overscan:        8,
			BaseRowHeight:   1,
			MinRowHeight:    1,
			MaxWindowRows:   400,
			FrameIntervalMs: 16,
			MaxCellWidth:    50,
			MaxRowLines:     8,
		},
		Storage: StorageConfig{
			Persist: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()

	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.panel_width_ratio", d.UI.PanelWidthRatio)
	v.SetDefault("data.page_size", d.Data.PageSize)
	v.SetDefault("data.max_cell_display_length", d.Data.MaxCellDisplayLength)
	v.SetDefault("data.jsonb_auto_format", d.Data.JSONBAutoFormat)
	v.SetDefault("data.query_timeout", d.Data.QueryTimeout)
	v.SetDefault("data.connection_pool_size", d.Data.ConnectionPoolSize)
	v.SetDefault("table.virtualize", d.Table.Virtualize)
	v.SetDefault("table.min_rows", d.Table.MinRows)
	v.SetDefault("table.min_cells", d.Table.MinCells)
	v.SetDefault("table.overscan", d.Table.Overscan)
	v.SetDefault("table.base_row_height", d.Table.BaseRowHeight)
	v.SetDefault("table.min_row_height", d.Table.MinRowHeight)
	v.SetDefault("table.max_window_rows", d.Table.MaxWindowRows)
	v.SetDefault("table.frame_interval_ms", d.Table.FrameIntervalMs)
	v.SetDefault("table.max_cell_width", d.Table.MaxCellWidth)
	v.SetDefault("table.max_row_lines", d.Table.MaxRowLines)
	v.SetDefault("storage.viewstate_path", "")
	v.SetDefault("storage.persist", d.Storage.Persist)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", d.Log.Level)
}

// Load loads configuration from the default search path.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or from the default search path
// when path is empty. A missing file in the search path is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LAZYDB")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(configDir, appName))
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Storage.ViewStatePath == "" {
		if dir, err := GetConfigPath(); err == nil {
			cfg.Storage.ViewStatePath = filepath.Join(dir, "viewstate.db")
		}
	}
	if cfg.Log.File == "" {
		if dir, err := GetConfigPath(); err == nil {
			cfg.Log.File = filepath.Join(dir, appName+".log")
		}
	}

	return &cfg, nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}
