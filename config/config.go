package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"connect3d/engine"
	"connect3d/geometry"
	"connect3d/session"
)

var (
	cfgFile = "connect3d/config.yaml"
)

// Environment variables that override the config file.
const (
	serverURLEnvName = "CONNECT3D_SERVER_URL"
	timeoutEnvName   = "CONNECT3D_TIMEOUT"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ServerConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	LocalAddr string        `yaml:"local_addr"` // listen address of the built-in server
}

type GameSettings struct {
	Mode          string        `yaml:"mode"`
	Difficulty    int           `yaml:"difficulty"`
	ResetDelay    time.Duration `yaml:"reset_delay"`
	PopupDuration time.Duration `yaml:"popup_duration"`
}

type GridConfig struct {
	Columns int     `yaml:"columns"`
	Rows    int     `yaml:"rows"`
	Depth   int     `yaml:"depth"`
	Spacing float64 `yaml:"spacing"`
}

type AnimationConfig struct {
	Gravity    float64 `yaml:"gravity"`
	FrameRate  int     `yaml:"frame_rate"`
	DropHeight float64 `yaml:"drop_height"`
}

type ConfigColors struct {
	BoardColor     int `yaml:"board"`
	LineColor      int `yaml:"line"`
	Player1Color   int `yaml:"player1"`
	Player2Color   int `yaml:"player2"`
	HighlightColor int `yaml:"highlight"`
	InfoColor      int `yaml:"info"`
	WarningColor   int `yaml:"warning"`
	ErrorColor     int `yaml:"error"`
}

type ConfigSymbols struct {
	Piece     rune `yaml:"piece"`
	Empty     rune `yaml:"empty"`
	Highlight rune `yaml:"highlight"`
}

type Theme struct {
	DrawPieceBackground bool          `yaml:"draw_piece_bg"`
	Colors              ConfigColors  `yaml:"colors"`
	Symbols             ConfigSymbols `yaml:"symbols"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Game      GameSettings    `yaml:"game"`
	Grid      GridConfig      `yaml:"grid"`
	Animation AnimationConfig `yaml:"animation"`
	Theme     Theme           `yaml:"theme"`
}

// InitConfig loads the user's config file over the defaults, then applies
// environment overrides.
func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadFile reads the config at path over the defaults.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig
	if err := readCfgFile(path, &config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadEnv loads variables from a .env file. A missing file is not an error.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides server settings from the environment.
func (c *Config) ApplyEnv() error {
	if url := os.Getenv(serverURLEnvName); len(url) != 0 {
		c.Server.URL = url
	}
	if timeout := os.Getenv(timeoutEnvName); len(timeout) != 0 {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", timeoutEnvName, err)
		}
		c.Server.Timeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		return &InvalidConfig{fmt.Sprintf("server url %q must start with http:// or https://", c.Server.URL)}
	}
	if c.Server.Timeout <= 0 {
		return &InvalidConfig{"server timeout must be positive"}
	}
	if !engine.Mode(c.Game.Mode).Valid() {
		return &InvalidConfig{fmt.Sprintf("unknown game mode %q", c.Game.Mode)}
	}
	if c.Game.Difficulty < 1 || c.Game.Difficulty > 3 {
		return &InvalidConfig{"difficulty must be between 1 and 3"}
	}
	if c.Grid.Columns < 1 || c.Grid.Rows < 1 || c.Grid.Depth < 1 || c.Grid.Spacing <= 0 {
		return &InvalidConfig{"grid dimensions must be positive"}
	}
	if c.Animation.Gravity <= 0 || c.Animation.FrameRate <= 0 {
		return &InvalidConfig{"gravity and frame rate must be positive"}
	}
	for _, r := range []rune{c.Theme.Symbols.Piece, c.Theme.Symbols.Empty, c.Theme.Symbols.Highlight} {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	return nil
}

// GameConfig returns the settings a session starts with.
func (c *Config) GameConfig() engine.GameConfig {
	return engine.GameConfig{
		Mode:       engine.Mode(c.Game.Mode),
		Difficulty: c.Game.Difficulty,
		ServerURL:  c.Server.URL,
		Timeout:    c.Server.Timeout,
	}
}

// Geometry returns the board dimensions.
func (c *Config) Geometry() geometry.Grid {
	return geometry.Grid{
		Columns: c.Grid.Columns,
		Rows:    c.Grid.Rows,
		Depth:   c.Grid.Depth,
		Spacing: c.Grid.Spacing,
	}
}

// Timings returns the session display timings.
func (c *Config) Timings() session.Timings {
	return session.Timings{
		ResetDelay:    c.Game.ResetDelay,
		PopupDuration: c.Game.PopupDuration,
		DropHeight:    c.Animation.DropHeight,
	}
}

func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, a); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}
	return nil
}
