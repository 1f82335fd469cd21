package config

import (
	"flag"
	"strings"
)

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagAssets = flag.String("assets", "", "Comma-separated model search directories")
	flagNoPOT  = flag.Bool("no-pot-resize", false, "Disable power-of-two texture resizing")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAssets != "" {
		cfg.Assets.ModelDirs = strings.Split(*flagAssets, ",")
	}
	if *flagNoPOT {
		cfg.Assets.TexturePOTResize = false
	}
}
