// toio - CLI for driving and observing toio Core Cube robots.
package main

import (
	"github.com/toiolab/toio/internal/cli"
)

func main() {
	cli.Execute()
}
