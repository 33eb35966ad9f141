package main

import (
	"fmt"
	"os"

	"github.com/Lunyn-HFT/pandora/cli"
)

func main() {
	if err := cli.App.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
