package main

import (
	"os"

	"github.com/sanchopanca/for-else/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
