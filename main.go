package main

import (
	"context"
	"os"

	"prism-tracker/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
