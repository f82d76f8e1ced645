package main

import (
	"os"

	"github.com/ubc/tlef-engeai-sub007/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
