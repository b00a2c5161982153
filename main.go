package main

import (
	"fmt"
	"os"

	"github.com/AnyUserName/bhash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bhash: %v\n", err)
		os.Exit(1)
	}
}
