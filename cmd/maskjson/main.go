package main

import (
	"os"

	"github.com/wachat/masklog/cmd/maskjson/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
