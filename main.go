package main

import (
	"os"

	"github.com/Sairaj-wayal-20/ATS-sys/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
