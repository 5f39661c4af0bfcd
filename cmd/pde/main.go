package main

import (
	"os"

	"github.com/seungjunone/peloton-data-explorer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
