package main

/*
  bio-dedup removes duplicate reads from FASTA and FASTQ files. For more
  information, see github.com/grailbio/fastxdedup/dedup/doc.go
*/

import (
	"flag"
	"fmt"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/fastxdedup/dedup"
)

// pathList is a flag.Value that accumulates paths. It accepts both
// repeated flags and comma-separated lists.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, path := range strings.Split(v, ",") {
		if path == "" {
			return fmt.Errorf("empty path in %q", v)
		}
		*p = append(*p, path)
	}
	return nil
}

// failure renders a failed run together with the counters reached
// before the failure.
func failure(summary dedup.Summary, err error) string {
	return fmt.Sprintf("%v\npartial results:\n%s", err, summary)
}

var (
	inputs            pathList
	outputs           pathList
	clusterOutput     = flag.String("cluster-output", "", "CSV (or .tsv) file mapping each read to the representative of its cluster")
	clusterSizeOutput = flag.String("cluster-size-output", "", "CSV (or .tsv) file with the size of each cluster")
	prefixLength      = flag.Int("prefix-length", 0, "number of leading bases compared between reads; 0 compares whole sequences")
	hash              = flag.String("hash", dedup.DefaultHash, "fingerprint hash, one of "+strings.Join(dedup.HashNames(), ", "))
	capacity          = flag.Int("capacity", 0, "expected number of unique reads; 0 estimates it from the input size")
)

func init() {
	flag.Var(&inputs, "inputs", "input FASTA/FASTQ file, or R1,R2 for paired reads")
	flag.Var(&inputs, "i", "shorthand for -inputs")
	flag.Var(&outputs, "deduped-outputs", "deduplicated output files, one per input")
	flag.Var(&outputs, "o", "shorthand for -deduped-outputs")
	flag.StringVar(clusterOutput, "c", "", "shorthand for -cluster-output")
	flag.IntVar(prefixLength, "l", 0, "shorthand for -prefix-length")
}

func main() {
	shutdown := grail.Init()
	defer shutdown()

	// Validate parameters.
	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}

	opts := dedup.Opts{
		Inputs:            inputs,
		Outputs:           outputs,
		ClusterOutput:     *clusterOutput,
		ClusterSizeOutput: *clusterSizeOutput,
		PrefixLength:      *prefixLength,
		Hash:              *hash,
		Capacity:          *capacity,
	}
	ctx := vcontext.Background()
	summary, err := dedup.Run(ctx, opts)
	if err != nil {
		log.Fatal(failure(summary, err))
	}
	fmt.Print(summary)
	log.Debug.Printf("exiting")
}
