// Command chanavg averages the color channels of images.
package main

import (
	"os"

	"github.com/gogpu/chanavg/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
