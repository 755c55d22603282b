// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/fastxdedup/encoding/fastx"
	"github.com/grailbio/fastxdedup/encoding/fastxpair"
	"github.com/grailbio/fastxdedup/encoding/table"
)

const (
	// bytesPerRecord is the approximate encoded size of one record, used
	// to estimate the number of clusters from the input size.
	bytesPerRecord = 400
	// progressInterval is the number of records between progress logs.
	progressInterval = 1 << 20
)

// Opts holds the parameters of Run.
type Opts struct {
	// Inputs lists one FASTA/FASTQ file, or the R1 and R2 files of a
	// paired-end run.
	Inputs []string
	// Outputs lists the deduplicated outputs, one per input.
	Outputs []string
	// ClusterOutput, if set, receives one (representative, read) row per
	// input read or pair.
	ClusterOutput string
	// ClusterSizeOutput, if set, receives one (representative, size) row
	// per cluster.
	ClusterSizeOutput string
	// PrefixLength is the number of leading bases compared. Zero compares
	// whole sequences.
	PrefixLength int
	// Hash names the fingerprint function. See HashNames.
	Hash string
	// Capacity is the expected number of clusters. Zero estimates it from
	// the size of the first input.
	Capacity int
}

func (o *Opts) validate() error {
	if n := len(o.Inputs); n != 1 && n != 2 {
		return errors.E(errors.Invalid, fmt.Sprintf("expected one or two inputs, got %d", n))
	}
	if len(o.Outputs) != len(o.Inputs) {
		return errors.E(errors.Invalid, "must have the same number of inputs and outputs")
	}
	if o.PrefixLength < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative prefix length %d", o.PrefixLength))
	}
	if o.Capacity < 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("negative capacity %d", o.Capacity))
	}
	return nil
}

// estimateCapacity guesses the number of records in path from its size.
func estimateCapacity(ctx context.Context, path string) (int, error) {
	info, err := file.Stat(ctx, path)
	if err != nil {
		return 0, err
	}
	return int(info.Size() / bytesPerRecord), nil
}

// Run deduplicates opts.Inputs into opts.Outputs and writes the
// requested cluster tables. With two inputs, the inputs are read as
// R1 and R2 of a paired-end run and deduplicated as pairs.
//
// The returned Summary counts the records processed so far, even when
// Run fails part way; outputs written before a failure are left in
// place.
func Run(ctx context.Context, opts Opts) (summary Summary, err error) {
	if err = opts.validate(); err != nil {
		return
	}
	hash, err := LookupHash(opts.Hash)
	if err != nil {
		return
	}
	capacity := opts.Capacity
	if capacity == 0 {
		if capacity, err = estimateCapacity(ctx, opts.Inputs[0]); err != nil {
			return
		}
	}
	log.Debug.Printf("dedup: inputs %v, outputs %v, prefix %d, hash %s, capacity %d",
		opts.Inputs, opts.Outputs, opts.PrefixLength, opts.Hash, capacity)

	// Every opened file is closed in reverse order, and the first error
	// wins.
	var closers []func(context.Context) error
	defer func() {
		var once errors.Once
		once.Set(err)
		for i := len(closers) - 1; i >= 0; i-- {
			once.Set(closers[i](ctx))
		}
		err = once.Err()
	}()

	sources := make([]*fastx.Source, len(opts.Inputs))
	for i, path := range opts.Inputs {
		if sources[i], err = fastx.Open(ctx, path); err != nil {
			return
		}
		closers = append(closers, sources[i].Close)
		log.Debug.Printf("dedup: %s: detected %s", path, sources[i].Type)
	}
	if len(sources) == 2 && sources[0].Type != sources[1].Type {
		err = errors.E(errors.Invalid, fmt.Sprintf("paired inputs have different file types r1: %s, r2: %s",
			sources[0].Type, sources[1].Type))
		return
	}
	sinks := make([]*fastx.Sink, len(opts.Outputs))
	for i, path := range opts.Outputs {
		if sinks[i], err = fastx.Create(ctx, path, sources[i].Type); err != nil {
			return
		}
		closers = append(closers, sinks[i].Close)
	}

	var rows table.Writer
	if opts.ClusterOutput != "" {
		var f *table.File
		if f, err = table.Create(ctx, opts.ClusterOutput); err != nil {
			return
		}
		closers = append(closers, f.Close)
		rows = f
	}
	c, err := NewClusters(rows, ClustersOpts{
		PrefixLength: opts.PrefixLength,
		Hash:         hash,
		Capacity:     capacity,
	})
	if err != nil {
		return
	}

	if len(sources) == 1 {
		err = dedupSingle(c, sources[0], sinks[0])
	} else {
		err = dedupPaired(c, sources[0], sources[1], sinks[0], sinks[1])
	}
	summary = c.Summary()
	if err != nil {
		return
	}

	if opts.ClusterSizeOutput != "" {
		var f *table.File
		if f, err = table.Create(ctx, opts.ClusterSizeOutput); err != nil {
			return
		}
		closers = append(closers, f.Close)
		if err = c.WriteSizes(f); err != nil {
			err = errors.E(err, "write cluster sizes", opts.ClusterSizeOutput)
			return
		}
	}
	log.Debug.Printf("dedup: %d duplicates, %d unique, %d total", summary.Duplicates, summary.Unique, summary.Total)
	return
}

func logProgress(path string, n uint64) {
	if n%progressInterval == 0 {
		log.Printf("%s: %dMi records", path, n/progressInterval)
	}
}

func dedupSingle(c *Clusters, src *fastx.Source, sink *fastx.Sink) error {
	for {
		r, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := r.Check(); err != nil {
			return errors.E(errors.Invalid, err, src.Path())
		}
		keep, err := c.InsertSingle(r)
		if err != nil {
			return errors.E(err, "write cluster row")
		}
		if keep {
			if err := sink.Write(r); err != nil {
				return err
			}
		}
		logProgress(src.Path(), c.Total())
	}
}

func dedupPaired(c *Clusters, src1, src2 *fastx.Source, sink1, sink2 *fastx.Sink) error {
	it := fastxpair.NewIterator(src1, src2)
	for {
		p, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.Check(); err != nil {
			return errors.E(errors.Invalid, err, src1.Path(), src2.Path())
		}
		keep, err := c.InsertPair(p)
		if err != nil {
			return errors.E(err, "write cluster row")
		}
		if keep {
			if err := sink1.Write(p.R1()); err != nil {
				return err
			}
			if err := sink2.Write(p.R2()); err != nil {
				return err
			}
		}
		logProgress(src1.Path(), c.Total())
	}
}
