// Command noterecorder records MIDI performances and plays them back with
// their original timing.
package main

import (
	"fmt"
	"os"
)

// Overridable at build time:
// go build -ldflags "-X main.version=1.2.3 -X main.commit=abcd123 -X main.date=2025-08-12T01:23:45Z"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "record":
		err = runRecord(os.Args[2:])
	case "durations":
		err = runDurations(os.Args[2:])
	case "play":
		err = runPlay(os.Args[2:])
	case "stereo":
		err = runStereo(os.Args[2:])
	case "print":
		err = runPrint(os.Args[2:], os.Stdout)
	case "devices":
		err = runDevices(os.Args[2:])
	case "version", "-v", "--version":
		printVersion()
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		if err == errUsage {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "noterecorder %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("noterecorder - record and replay MIDI performances")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  noterecorder <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  record     capture a take until Enter is pressed, then save it")
	fmt.Println("  durations  capture played notes with their durations until the keyboard falls silent")
	fmt.Println("  play       replay a take, optionally looping forever")
	fmt.Println("  stereo     replay two takes together, one per speaker")
	fmt.Println("  print      list the notes of a take")
	fmt.Println("  devices    list MIDI input and output ports")
	fmt.Println("  version    show version information")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  noterecorder record -in \"Digital Piano\" -monitor -o take.json")
	fmt.Println("  noterecorder play take.json -perpetual:2.5")
	fmt.Println("  noterecorder stereo left.json right.json -out \"GS Wavetable\"")
	fmt.Println("  noterecorder print take.json")
}

func printVersion() {
	fmt.Printf("noterecorder %s (commit %s, built %s)\n", version, commit, date)
}
