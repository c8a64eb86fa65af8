// Command winmem reports Windows memory telemetry: system performance
// counters, global memory status and per-process memory counters.
package main

import "os"

func main() {
	os.Exit(execute())
}
