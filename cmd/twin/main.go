// Package main is the single-binary entrypoint for Twin.
// Twin is a local-first virtual companion: one binary, one SQLite file.
package main

import "github.com/twinlab/twin/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
