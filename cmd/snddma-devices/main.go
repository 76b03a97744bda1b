// ABOUTME: Lists playback devices and probes the audio backends
// ABOUTME: Opens each requested driver once and reports what it obtained
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Resonate-Protocol/snddma/pkg/audio/output"
	"github.com/Resonate-Protocol/snddma/pkg/dma"
)

var (
	probe = flag.String("probe", "", "Comma-separated drivers to open once (e.g. malgo,oto)")
	khz   = flag.Int("khz", 11, "Sample rate selector used for probing")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	devices, err := output.ListDevices()
	if err != nil {
		log.Printf("Failed to list devices: %v", err)
	} else {
		fmt.Println("Playback devices:")
		for _, d := range devices {
			marker := " "
			if d.IsDefault {
				marker = "*"
			}
			fmt.Printf(" %s %s\n", marker, d.Name)
		}
	}

	if *probe == "" {
		return
	}

	failed := false
	for _, name := range strings.Split(*probe, ",") {
		dev, err := output.New(strings.TrimSpace(name))
		if err != nil {
			log.Printf("%v", err)
			failed = true
			continue
		}

		out := dma.New(dma.Options{Device: dev, Logf: log.Printf})
		if err := out.Open(*khz); err != nil {
			log.Printf("%s: %v", name, err)
			failed = true
			continue
		}
		out.PrintDeviceName()
		out.Shutdown()
	}

	if failed {
		os.Exit(1)
	}
}
