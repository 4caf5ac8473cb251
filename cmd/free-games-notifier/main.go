// Package main is the entry point for free-games-notifier.
package main

import (
	"os"

	_ "time/tzdata"

	"github.com/donaldgifford/free-games-notifier/cmd/free-games-notifier/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
