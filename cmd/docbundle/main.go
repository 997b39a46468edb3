package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/dgallion1/docbundle/internal/cmd"
	"github.com/dgallion1/docbundle/internal/docerr"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "Error: ")
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(docerr.ExitCode(err))
	}
}
