// Package config parses trophy's command-line invocation into a Config,
// using the same cobra/pflag stack the terminal UI libraries already pull
// in transitively (via charmbracelet/fang).
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrHelp is returned when the user asked for --help: cobra has already
// printed usage, and the caller should exit cleanly without an error
// message of its own.
var ErrHelp = errors.New("help requested")

// Config holds every flag-configurable setting for one run of trophy.
type Config struct {
	ModelPath   string
	TexturePath string
	TargetFPS   int

	BGRed, BGGreen, BGBlue uint8

	ShadowMapSize int
	Verbose       bool

	TextureRotate int // degrees clockwise: 0, 90, 180, or 270
	FlipTextureH  bool
	FlipTextureV  bool
}

// Parse builds a Config from command-line arguments (typically
// os.Args[1:]). It returns ErrHelp if the caller asked for --help, in
// which case usage has already been printed and the caller should exit
// cleanly.
func Parse(args []string) (*Config, error) {
	cfg := &Config{
		TargetFPS:     60,
		BGRed:         30,
		BGGreen:       30,
		BGBlue:        40,
		ShadowMapSize: 512,
	}

	var bg string
	cmd := &cobra.Command{
		Use:           "trophy <model.obj|model.glb>",
		Short:         "Terminal 3D model viewer",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, posArgs []string) error {
			cfg.ModelPath = posArgs[0]
			var r, g, b uint8
			if _, err := fmt.Sscanf(bg, "%d,%d,%d", &r, &g, &b); err == nil {
				cfg.BGRed, cfg.BGGreen, cfg.BGBlue = r, g, b
			}
			return nil
		},
	}
	cmd.SetArgs(args)

	flags := cmd.Flags()
	flags.StringVar(&cfg.TexturePath, "texture", "", "Path to texture image (PNG/JPG)")
	flags.IntVar(&cfg.TargetFPS, "fps", cfg.TargetFPS, "Target frames per second")
	flags.StringVar(&bg, "bg", "30,30,40", "Background color (R,G,B)")
	flags.IntVar(&cfg.ShadowMapSize, "shadow-map-size", cfg.ShadowMapSize, "Directional-light shadow map resolution (pixels per side)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging")
	flags.IntVar(&cfg.TextureRotate, "texture-rotate", 0, "Rotate the loaded texture clockwise by this many degrees (0, 90, 180, or 270)")
	flags.BoolVar(&cfg.FlipTextureH, "flip-texture-h", false, "Flip the loaded texture left-to-right")
	flags.BoolVar(&cfg.FlipTextureV, "flip-texture-v", false, "Flip the loaded texture top-to-bottom")

	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("help") || cfg.ModelPath == "" {
		return nil, ErrHelp
	}
	switch cfg.TextureRotate {
	case 0, 90, 180, 270:
	default:
		return nil, fmt.Errorf("--texture-rotate must be 0, 90, 180, or 270, got %d", cfg.TextureRotate)
	}
	return cfg, nil
}
