// Command tlbsim replays TLB instruction scenarios against the r4300 TLB.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/disi33/mupen64plus-core/tlbsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
