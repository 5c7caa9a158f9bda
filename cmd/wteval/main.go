// Command wteval simulates users typing with wordtrail and reports how many
// keystrokes suggestions save, with and without each user's history.
//
// For every persona of every language it generates sentences, builds a
// profile from them and compares the savings rate of plain frequency ranking
// against the personalized one. Ranking quality (precision, recall, F1 at k and
// MAP) is reported alongside:
//
//	wteval -data data -n 200 -test 100
//	wteval -langs ja -personas my_personas.yaml -out sentences/
//	wteval -store profiles/   # keep the simulated profiles for the server
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"maps"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/bastiangx/wordtrail/internal/logger"
	"github.com/bastiangx/wordtrail/internal/utils"
	"github.com/bastiangx/wordtrail/pkg/dictionary"
	"github.com/bastiangx/wordtrail/pkg/eval"
	"github.com/bastiangx/wordtrail/pkg/simulate"
	"github.com/bastiangx/wordtrail/pkg/store"
	"github.com/bastiangx/wordtrail/pkg/suggest"
	"github.com/charmbracelet/log"
)

type result struct {
	Comparison *eval.Comparison `json:"comparison"`
	Report     *eval.Report     `json:"report"`
}

func main() {
	dataDir := flag.String("data", "data", "Directory containing the word lists")
	wordlist := flag.String("wordlist", suggest.DefaultWordlist, "Word list variant")
	langs := flag.String("langs", "", "Comma separated languages (default: every language with personas)")
	personaFile := flag.String("personas", "", "YAML persona catalog (default: built-in)")
	n := flag.Int("n", 200, "Sentences to generate per persona")
	testCount := flag.Int("test", 100, "Sentences per persona to measure savings on")
	topN := flag.Int("top", eval.DefaultTopN, "Suggestions a user scans")
	ks := flag.String("k", "1,3,5,10", "Cut-offs for precision and recall")
	seed := flag.Uint64("seed", 42, "Random seed for sentence generation")
	outDir := flag.String("out", "", "Write generated sentences to this directory")
	storePath := flag.String("store", "", "Save the simulated profiles to this profile store")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	}

	catalog := simulate.Default()
	if *personaFile != "" {
		var err error
		if catalog, err = simulate.LoadFile(*personaFile); err != nil {
			log.Fatalf("Failed to load personas: %v", err)
		}
	}

	languages := catalog.LanguageCodes()
	if *langs != "" {
		languages = strings.Split(*langs, ",")
	}

	cutoffs, err := parseKs(*ks)
	if err != nil {
		log.Fatalf("Invalid -k: %v", err)
	}

	if !utils.IsValidDataDir(*dataDir) {
		log.Fatalf("No word lists found in %s", *dataDir)
	}
	rec, err := suggest.New(context.Background(), dictionary.NewSource(*dataDir), suggest.Options{
		Languages: languages,
		Wordlist:  *wordlist,
	})
	if err != nil {
		log.Fatalf("Failed to build indexes: %v", err)
	}

	var st *store.Store
	if *storePath != "" {
		if st, err = store.Open(*storePath); err != nil {
			log.Fatalf("Failed to open profile store: %v", err)
		}
		defer st.Close()
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	var results []result
	saved := 0

	for _, lang := range languages {
		for _, id := range catalog.PersonaIDs(lang) {
			sentences, err := catalog.Generate(lang, id, *n, rng)
			if err != nil || len(sentences) == 0 {
				log.Warnf("No sentences for %s/%s: %v", lang, id, err)
				continue
			}
			if *outDir != "" {
				if err := simulate.SaveSentences(*outDir, id, lang, sentences); err != nil {
					log.Warnf("Failed to save sentences: %v", err)
				}
			}

			test := sentences[:min(*testCount, len(sentences))]
			cmp, profile, err := eval.Compare(rec, id, lang, sentences, test, *topN)
			if err != nil {
				log.Warnf("Skipping %s/%s: %v", lang, id, err)
				continue
			}
			report, err := eval.Evaluate(rec, test, lang, cutoffs, profile)
			if err != nil {
				log.Warnf("Skipping %s/%s metrics: %v", lang, id, err)
				continue
			}
			if st != nil {
				if err := st.Save(lang, profile); err != nil {
					log.Warnf("Failed to save profile %s: %v", id, err)
				} else {
					saved++
				}
			}
			results = append(results, result{Comparison: cmp, Report: report})
		}
	}

	if st != nil {
		if err := st.Sync(); err != nil {
			log.Errorf("Failed to flush profile store: %v", err)
		} else {
			log.Infof("Saved %d profiles to %s", saved, *storePath)
		}
	}

	if len(results) == 0 {
		log.Fatal("No persona could be evaluated")
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			log.Fatalf("Failed to encode results: %v", err)
		}
		return
	}
	printResults(logger.NewWithConfig(os.Stdout, "", log.InfoLevel, false, false, log.TextFormatter), results, cutoffs)
}

func parseKs(s string) ([]int, error) {
	var ks []int
	for _, field := range strings.Split(s, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("cut-off %q is not a positive integer", field)
		}
		ks = append(ks, k)
	}
	slices.Sort(ks)
	return slices.Compact(ks), nil
}

func printResults(out *log.Logger, results []result, ks []int) {
	var general, personalized float64
	for _, r := range results {
		c := r.Comparison
		out.Printf("[%s] %-12s sentences=%d general=%.2f%% personalized=%.2f%% improvement=%+.2f%%p (%+.2f%%)",
			strings.ToUpper(c.Lang), c.UserID, c.Sentences, c.General, c.Personalized, c.Improvement, c.ImprovementPercent)

		var metrics []string
		for _, k := range ks {
			metrics = append(metrics, fmt.Sprintf("P@%d=%.3f R@%d=%.3f F1@%d=%.3f",
				k, r.Report.PrecisionAtK[k], k, r.Report.RecallAtK[k], k, r.Report.F1AtK[k]))
		}
		out.Printf("      %s MAP=%.3f", strings.Join(metrics, " "), r.Report.MAP)
		printRomaji(out, r.Report.WordRomaji, 10)

		general += c.General
		personalized += c.Personalized
	}

	count := float64(len(results))
	out.Printf("average general=%.2f%% personalized=%.2f%% improvement=%+.2f%%p",
		general/count, personalized/count, (personalized-general)/count)
}

// printRomaji shows up to n evaluated Japanese words with their romaji spelling.
func printRomaji(out *log.Logger, spelled map[string]string, n int) {
	if len(spelled) == 0 {
		return
	}
	words := slices.Sorted(maps.Keys(spelled))
	for _, w := range words[:min(n, len(words))] {
		out.Printf("      %s -> %s", w, spelled[w])
	}
}
