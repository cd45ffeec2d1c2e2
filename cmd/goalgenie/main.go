package main

import (
	"os"

	"github.com/felixgeelhaar/goalgenie/internal/infrastructure/cli"
)

func main() {
	os.Exit(cli.Execute())
}
