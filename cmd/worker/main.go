package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker analyze <projectPath> [outDir] [title] | worker schedule")
	}

	switch os.Args[1] {
	case "analyze":
		RunAnalyze(os.Args[2:])
	case "schedule":
		RunSchedule()
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
