package main

import (
	"fmt"
	"os"

	"deploystrat/internal/observe"
)

func main() {
	logger, err := observe.New(observe.Options{Level: "info", Component: "cli"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create application logger: %v\n", err)
		os.Exit(1)
	}

	app := &AppContext{Logger: logger}
	rootCmd := newRootCmd(app)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
