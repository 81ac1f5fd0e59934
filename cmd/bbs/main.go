package main

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"bbs/internal/app"
	"bbs/pkg/banner"
	"bbs/pkg/config"
	"bbs/pkg/logger"
	"bbs/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load(".env")
	dataVal, cfgVal, fresh, setFlags := config.ParseCommandFlags()

	// Resolve config path (file flag wins over env)
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		logger.Init()
		shutdown.Abort("failed to load config", err, "")
	}
	// Flags explicitly set win over env/config for the data dir.
	if setFlags["data"] {
		cfg.Storage.DataDir = dataVal
	}

	logger.InitWithLevel(cfg.Logging.Level)

	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	banner.Print(os.Stdout, cfg.Storage.DataDir, cfg.Storage.MaxMessages, cfg.Storage.ShardSize, strings.Join(srcs, ", "), verStr)

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	a := app.New(cfg, fresh, os.Stdin, os.Stdout)
	if err := a.Run(ctx); err != nil {
		shutdown.Abort("session loop failed", err, cfg.Storage.DataDir)
	}
}
