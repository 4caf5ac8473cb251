// Package main generates the CLI reference for free-games-notifier as
// markdown pages or man pages.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/free-games-notifier/cmd/free-games-notifier/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory")
	format := flag.String("format", "markdown", "output format (markdown, man)")
	flag.Parse()

	if err := os.MkdirAll(*output, 0o750); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	var err error
	switch *format {
	case "markdown":
		err = doc.GenMarkdownTree(root, *output)
	case "man":
		err = doc.GenManTree(root, &doc.GenManHeader{
			Title:   "FREE-GAMES-NOTIFIER",
			Section: "1",
			Source:  "free-games-notifier " + cmd.Version,
		}, *output)
	default:
		log.Fatalf("unknown format %q (want markdown or man)", *format)
	}
	if err != nil {
		log.Fatalf("generating docs: %v", err)
	}

	fmt.Printf("CLI %s docs generated in %s/\n", *format, *output)
}
