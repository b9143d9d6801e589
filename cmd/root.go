/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/ensight6/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ensight6",
	Short: "EnSight6 binary case decoder",
	Long: `
Decodes EnSight6 binary geometry, measured and variable files and reports
the decoded blocks and fields.

ensight6 decode -F engine.geo
ensight6 decode -I case.yaml`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ensight6.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "trace the decoder")
	rootCmd.PersistentFlags().String("profile", "", "write a CPU profile into this directory")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".ensight6" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".ensight6")
	}

	viper.SetEnvPrefix("ENSIGHT6")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the command logger from the verbose setting
func newLogger() *logging.Logger {
	log := logging.NewLogger()
	if viper.GetBool("verbose") {
		log.SetLogLevel(logging.LevelInfo)
	}
	return log
}

// startProfile starts CPU profiling when requested. The returned stop
// function is always safe to call.
func startProfile() (stop func()) {
	dir := viper.GetString("profile")
	if dir == "" {
		return func() {}
	}
	return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.Quiet).Stop
}
