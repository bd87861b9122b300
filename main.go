package main

import "github.com/mrlokans/lending/internal/cli"

// Version information - set at build time via ldflags
var Version = "dev"

func main() {
	cli.Execute(Version)
}
