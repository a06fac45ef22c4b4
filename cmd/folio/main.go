package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/starford/folio/internal/commands"
)

var version = "dev"

func main() {
	if err := commands.New(version).Run(context.Background(), os.Args); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
