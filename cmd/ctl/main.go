package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"community-events/internal/cli"
)

func main() {
	_ = godotenv.Load()
	if err := cli.NewRoot(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
