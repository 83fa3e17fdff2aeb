package main

import (
	"os"

	"github.com/wanmail/selenide/cmd/selenide/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
