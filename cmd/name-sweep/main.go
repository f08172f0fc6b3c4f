package main

import (
	"fmt"
	"os"

	namesweep "github.com/thrawn01/name-sweep"
)

func main() {
	if err := namesweep.RunCmd(os.Args, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
