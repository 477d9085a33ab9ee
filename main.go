package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/attanavaid/portfolio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
