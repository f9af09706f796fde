package main

import (
	"os"

	"github.com/buildtrack/buildtrack/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
