// Command claimctl runs the claim pipeline over local directories and mints API tokens.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

const usage = `Usage:
  claimctl process [-json] [-xlsx out.xlsx] <claim-dir>...
  claimctl token -sub <subject> [-ttl 24h]

Each claim directory holds the documents of one claim.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "process":
		err = runProcess(os.Args[2:])
	case "token":
		err = runToken(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		err = fmt.Errorf("unknown command %q\n%s", os.Args[1], usage)
	}
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
