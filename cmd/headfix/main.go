package main

import (
	"os"

	"github.com/dgallion1/headfix/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cli.SetVersionInfo(version, commit)
	os.Exit(cli.Execute())
}
