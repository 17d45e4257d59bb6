// Command picfield converts and validates COBOL fixed-width fields from the
// command line: display formatting, packed and zoned decimals, picture
// matching and record layouts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp(os.Stdout)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
