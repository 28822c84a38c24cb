package main

import (
	"os"

	"github.com/taskery/taskery/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
