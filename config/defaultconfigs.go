package config

import "time"

var DefaultConfig Config
var DefaultTheme Theme

func init() {
	DefaultTheme = Theme{
		DrawPieceBackground: false,
		Colors: ConfigColors{
			BoardColor:     236,
			LineColor:      244,
			Player1Color:   196,
			Player2Color:   226,
			HighlightColor: 45,
			InfoColor:      33,
			WarningColor:   214,
			ErrorColor:     160,
		},
		Symbols: ConfigSymbols{
			Piece:     '●',
			Empty:     '·',
			Highlight: '▼',
		},
	}

	DefaultConfig = Config{
		Server: ServerConfig{
			URL:       "http://localhost:5000/v1/api",
			Timeout:   5 * time.Second,
			LocalAddr: "127.0.0.1:0",
		},
		Game: GameSettings{
			Mode:          "pvp",
			Difficulty:    2,
			ResetDelay:    3 * time.Second,
			PopupDuration: 2 * time.Second,
		},
		Grid: GridConfig{
			Columns: 4,
			Rows:    4,
			Depth:   5,
			Spacing: 1.5,
		},
		Animation: AnimationConfig{
			Gravity:    30,
			FrameRate:  60,
			DropHeight: 3,
		},
		Theme: DefaultTheme,
	}
}
