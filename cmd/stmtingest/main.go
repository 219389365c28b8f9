package main

import (
	"os"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
