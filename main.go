package main

import (
	"os"

	"github.com/eslquiz/quizgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
