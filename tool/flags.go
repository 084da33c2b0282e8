package tool

import (
	"flag"

	"github.com/muingY/gif-compressor-backend/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.Config {
	var cfg types.Config
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseGifFolder, "useGifFolder", "", "override folder holding session directories")
	flag.StringVar(&cfg.UseHost, "useHost", "", "override listen host")
	flag.IntVar(&cfg.UsePort, "usePort", 0, "override listen port")
	flag.BoolVar(&cfg.UseHttps, "useHttps", false, "serve https with the certificate from config (generated if missing)")
	flag.BoolVar(&cfg.SkipNotify, "skipNotify", false, "if true, do not serve the notify websocket")
	flag.Parse()
	return cfg
}

// ApplyFlags merges CLI overrides into appCfg.
func ApplyFlags(appCfg *types.AppConfig, flags types.Config) {
	if flags.UseGifFolder != "" {
		appCfg.GifFolder = flags.UseGifFolder
	}
	if flags.UseHost != "" {
		appCfg.Host = flags.UseHost
	}
	if flags.UsePort > 0 {
		appCfg.Port = flags.UsePort
	}
	if flags.UseHttps {
		appCfg.Protocol = "https"
	}
	if flags.SkipNotify {
		appCfg.NotifyWebsocket = false
	}
}
