package main

import (
	"os"

	"github.com/grovetools/sheetsync/cli"
	"github.com/grovetools/sheetsync/cmd"
	"github.com/grovetools/sheetsync/errors"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if failed, err := rootCmd.ExecuteC(); err != nil {
		if _, ok := errors.AsSyncError(err); ok {
			verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
			cli.NewErrorHandler(verbose).Handle(err)
		} else {
			cli.PrintError(failed, err)
		}
		os.Exit(1)
	}
}
