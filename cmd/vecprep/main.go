// vecprep - prepares raster images for vector tracing
//
// vecprep reduces images to a small palette, segments them into connected
// single-colour regions and hands those regions to tracer plugins. It also
// provides selection tools for removing backgrounds before tracing.
package main

import (
	"github.com/jmylchreest/vecprep/internal/cli"
)

func main() {
	cli.Execute()
}
