package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Globals
var (
	logger   log.Logger
	psConfig PostscriptConfig
)

// Unified configuration for the postscript hook binary
type PostscriptConfig struct {
	ProfileDirectory string
	SettingsPath     string
	Debug            string
}

func (c PostscriptConfig) String() string {
	str, err := json.MarshalIndent(c, "  ", "  ")
	if err != nil {
		str = []byte("error marshaling struct: " + err.Error())
	}
	return fmt.Sprintf("\n==> Postscript configuration:\n\n  %s\n", string(str))
}

func loadConfigFromEnv() PostscriptConfig {
	return PostscriptConfig{
		ProfileDirectory: os.Getenv("PS_PROFILE_DIR"),
		SettingsPath:     os.Getenv("PS_SETTINGS_FILE"),
		Debug:            os.Getenv("PS_DEBUG"),
	}
}

var MainCmd = &cobra.Command{
	Use:   "postscript",
	Short: "Post-task script hook for the transcode pipeline",
}

func main() {

	_ = godotenv.Load()

	psConfig = loadConfigFromEnv()

	loglevel := level.AllowInfo()
	if parseBoolOption(psConfig.Debug, false) {
		loglevel = level.AllowDebug()
	}

	logger = log.NewLogfmtLogger(os.Stdout)
	logger = level.NewFilter(logger, loglevel)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	level.Debug(logger).Log("msg", "Postscript hook starting")

	if err := MainCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
