// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/ostafen/partedit/internal/config"
	"github.com/ostafen/partedit/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const AppName = "partedit"

var (
	v   *viper.Viper
	cfg *config.Config
)

func Execute() error {
	return NewRootCommand().Execute()
}

func NewRootCommand() *cobra.Command {
	v = viper.New()

	rootCmd := &cobra.Command{
		Use:               AppName,
		Short:             AppName + " - partition table editor",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path of the configuration file")
	flags.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.String("grain", "1MiB", "alignment of new partitions")
	flags.Bool("no-color", false, "disable colored output")

	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyGrain, flags.Lookup("grain"))
	_ = v.BindPFlag(config.KeyNoColor, flags.Lookup("no-color"))

	rootCmd.AddCommand(
		DefineCreateCommand(),
		DefineListCommand(),
		DefineAddCommand(),
		DefineDeleteCommand(),
		DefineSetCommand(),
		DefineSetTypeCommand(),
		DefineToggleCommand(),
		DefineVerifyCommand(),
		DefineTypesCommand(),
		DefineSectionsCommand(),
		DefineBackupCommand(),
		DefineRestoreCommand(),
		DefineMountCommand(),
		DefineVersionCommand(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")

	c, err := config.Load(v, path)
	if err != nil {
		return err
	}
	cfg = c

	logger.SetDefault(logger.New(os.Stderr, cfg.Level()))
	if cfg.NoColor {
		color.NoColor = true
	}
	return nil
}
