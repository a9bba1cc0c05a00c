// hitlog - Web Access Log Analyzer
//
// hitlog summarizes Apache and Nginx access logs: line counts, bytes sent,
// status codes, methods, top client addresses and top requested paths.
package main

import (
	"os"

	"github.com/ccollicutt/hitlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
