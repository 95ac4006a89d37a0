package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	defaultConfigFileName = "config.yml"
	defaultParamsFileName = "protocol_params.json"
)

var (
	cfgPath    string
	paramsPath string
	replayFlag bool
	rootCmd    = &cobra.Command{
		Use: "start-server",
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := getDefaultConfigFile(homePath, defaultConfigFileName)
	defaultParamsPath := getDefaultConfigFile(homePath, defaultParamsFileName)

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))
	rootCmd.PersistentFlags().StringVar(&paramsPath, "params", defaultParamsPath, fmt.Sprintf("protocol params file (default %s)", defaultParamsPath))
	rootCmd.PersistentFlags().BoolVar(&replayFlag, "replay-events", false, "replay unpublished activity events and exit")
	if err := rootCmd.Execute(); err != nil {
		return err
	}

	return nil
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}

func GetParamsPath() string {
	return paramsPath
}

func GetReplayFlag() bool {
	return replayFlag
}
