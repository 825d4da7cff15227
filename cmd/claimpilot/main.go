package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"claimpilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
