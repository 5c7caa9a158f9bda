// Command wordpack converts word frequency lists between the plain text and cBpack formats.
//
// Text lists hold one "word<TAB>frequency" pair per line. cBpack files group
// words into centibel buckets and are what wordtrail loads fastest:
//
//	wordpack -input words_en.txt -output data/large_en.msgpack.gz
//	wordpack -input data/small_ja.msgpack.gz -output small_ja.txt
//
// With -info the input is only validated and summarized.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bastiangx/wordtrail/pkg/dictionary"
	"github.com/charmbracelet/log"
)

func main() {
	inputPath := flag.String("input", "", "word list to read (.txt or .msgpack.gz)")
	outputPath := flag.String("output", "", "word list to write, format taken from the extension")
	info := flag.Bool("info", false, "validate and summarize the input without writing")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}

	if *inputPath == "" || (*outputPath == "" && !*info) {
		fmt.Fprintf(os.Stderr, "Usage: wordpack -input <file> (-output <file> | -info)\n")
		for _, f := range dictionary.ListSupportedFormats() {
			fmt.Fprintf(os.Stderr, "  %-24s %v\n", f.Description, f.Extensions)
		}
		os.Exit(1)
	}

	if *info {
		format, err := dictionary.DetectFileFormat(*inputPath)
		if err != nil {
			log.Fatalf("wordpack: %v", err)
		}
		freqs, err := dictionary.LoadFile(*inputPath)
		if err != nil {
			log.Fatalf("wordpack: %v", err)
		}
		buckets, err := dictionary.FreqsToBuckets(freqs)
		if err != nil {
			log.Fatalf("wordpack: %v", err)
		}
		log.Print(*inputPath, "format", format, "words", len(freqs), "buckets", len(buckets))
		return
	}

	n, err := dictionary.Convert(*inputPath, *outputPath)
	if err != nil {
		log.Fatalf("wordpack: %v", err)
	}
	log.Print("converted", "words", n, "from", *inputPath, "to", *outputPath)
}
