package main

import (
	"os"

	"github.com/KevinKickass/OpenDACCore/cmd/daccore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
