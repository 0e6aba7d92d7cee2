package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cli := NewCLIWithDefaults()
	defer cli.Close()

	var err error
	args := os.Args[2:]

	switch os.Args[1] {
	case "commit":
		err = cli.Commit(args)
	case "note":
		err = cli.Note(args)
	case "prove":
		err = cli.Prove(args)
	case "verify":
		err = cli.Verify(args)
	case "status":
		err = cli.Status()
	case "decode":
		err = cli.Decode(args)
	case "encode":
		err = cli.Encode(args)
	case "certificate":
		err = cli.Certificate(args)
	case "sanctions":
		err = cli.Sanctions(args)
	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
