package main

import (
	"os"

	"github.com/NewsNowIndy/Dashboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
