package main

import (
	"os"

	"github.com/accessd/accessd/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
