// vecprep-svgtrace - the bundled vecprep tracer plugin
//
// Run without arguments it serves the go-plugin tracer protocol. With
// --plugin-info it prints its metadata for vecprep's protocol detection.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmylchreest/vecprep/internal/plugin/protocol"
	"github.com/jmylchreest/vecprep/internal/svgtrace"
	pluginapi "github.com/jmylchreest/vecprep/pkg/plugin"
)

func main() {
	tracer := svgtrace.New()

	if len(os.Args) > 1 && os.Args[1] == protocol.InfoFlag {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(tracer.GetMetadata()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding plugin info: %v\n", err)
			os.Exit(1)
		}
		return
	}

	pluginapi.Serve(tracer)
}
