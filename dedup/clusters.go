// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/fastxdedup/encoding/fastx"
	"github.com/grailbio/fastxdedup/encoding/fastxpair"
	"github.com/grailbio/fastxdedup/encoding/table"
)

// pairSeparator is mixed between the two mate fingerprints of a pair.
const pairSeparator uint64 = 0

var (
	clusterHeader = []string{"representative read id", "read id"}
	sizeHeader    = []string{"representative read id", "cluster size"}
)

// cluster is the set of records that share a fingerprint, represented
// by the first record seen.
type cluster struct {
	rep  string
	size uint64
}

// ClustersOpts configures Clusters.
type ClustersOpts struct {
	// PrefixLength is the maximum number of leading bases of each
	// sequence that are fingerprinted. Zero fingerprints the whole
	// sequence.
	PrefixLength int
	// Hash computes fingerprints. Nil selects DefaultHash.
	Hash HashFunc
	// Capacity is the expected number of clusters. It is a sizing hint.
	Capacity int
}

// Clusters assigns records to clusters keyed by the fingerprint of
// their (prefixed) sequence, and counts unique and duplicate records.
//
// Records with equal prefixes always share a cluster. Records with
// different prefixes share a cluster only if their fingerprints
// collide; such false duplicates are accepted.
//
// Clusters is not threadsafe.
type Clusters struct {
	opts ClustersOpts
	hash HashFunc
	// index maps a fingerprint to its position in clusters. clusters is
	// in first-seen order.
	index    map[uint64]int
	clusters []cluster
	total    uint64
	// rows receives one (representative, member) row per insertion.
	rows table.Writer
}

// NewClusters creates an empty cluster store. If rows is non-nil, the
// mapping header is written to it immediately, followed by one row per
// insertion, in insertion order. If rows is nil, no rows are produced;
// counting is unaffected.
func NewClusters(rows table.Writer, opts ClustersOpts) (*Clusters, error) {
	if opts.PrefixLength < 0 {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("negative prefix length %d", opts.PrefixLength))
	}
	c := &Clusters{
		opts:  opts,
		hash:  opts.Hash,
		index: make(map[uint64]int, opts.Capacity),
		rows:  table.Discard,
	}
	if c.hash == nil {
		c.hash = hashFuncs[DefaultHash]
	}
	if rows != nil {
		if err := rows.Write(clusterHeader...); err != nil {
			return nil, err
		}
		c.rows = rows
	}
	return c, nil
}

// prefix returns the leading bases of seq that are fingerprinted.
func (c *Clusters) prefix(seq []byte) []byte {
	if n := c.opts.PrefixLength; n > 0 && n < len(seq) {
		return seq[:n]
	}
	return seq
}

// InsertSingle assigns r to a cluster. It returns true if r started a
// new cluster, in which case r should be kept; false means r is a
// duplicate.
//
// The counters and the cluster are updated before the mapping row is
// written; a row write error is returned but the insertion is not
// undone.
func (c *Clusters) InsertSingle(r fastx.Record) (bool, error) {
	return c.insert(c.hash(c.prefix(r.Seq())), r.ID())
}

// InsertPair is InsertSingle for a read pair. Two pairs share a cluster
// iff their R1 prefixes match and their R2 prefixes match; a pair and
// its mate-swapped counterpart are different clusters. The pair ID is
// recorded as the representative.
func (c *Clusters) InsertPair(p *fastxpair.Pair) (bool, error) {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], c.hash(c.prefix(p.R1().Seq())))
	binary.LittleEndian.PutUint64(buf[8:], pairSeparator)
	binary.LittleEndian.PutUint64(buf[16:], c.hash(c.prefix(p.R2().Seq())))
	return c.insert(c.hash(buf[:]), p.ID())
}

func (c *Clusters) insert(fp uint64, id string) (bool, error) {
	c.total++
	if i, ok := c.index[fp]; ok {
		cl := &c.clusters[i]
		cl.size++
		return false, c.rows.Write(cl.rep, id)
	}
	c.index[fp] = len(c.clusters)
	c.clusters = append(c.clusters, cluster{rep: id, size: 1})
	return true, c.rows.Write(id, id)
}

// Unique returns the number of clusters.
func (c *Clusters) Unique() uint64 { return uint64(len(c.clusters)) }

// Duplicates returns the number of records that joined an existing
// cluster.
func (c *Clusters) Duplicates() uint64 { return c.total - c.Unique() }

// Total returns the number of insertions.
func (c *Clusters) Total() uint64 { return c.total }

// Summary returns a snapshot of the counters.
func (c *Clusters) Summary() Summary {
	return Summary{Duplicates: c.Duplicates(), Unique: c.Unique(), Total: c.Total()}
}

// WriteSizes writes a header and one (representative, size) row per
// cluster to w, then flushes w. Callers must not depend on the row
// order. Rows written before an error remain in w.
func (c *Clusters) WriteSizes(w table.Writer) error {
	if err := w.Write(sizeHeader...); err != nil {
		return err
	}
	for _, cl := range c.clusters {
		if err := w.Write(cl.rep, strconv.FormatUint(cl.size, 10)); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Summary holds the counters of a deduplication run.
type Summary struct {
	// Duplicates is the number of records (or pairs) dropped.
	Duplicates uint64
	// Unique is the number of clusters, i.e. records kept.
	Unique uint64
	// Total is the number of records (or pairs) examined.
	Total uint64
}

// String renders s as the three-line report printed by bio-dedup.
func (s Summary) String() string {
	return fmt.Sprintf("duplicates:   %16d\nunique reads: %16d\ntotal reads:  %16d\n",
		s.Duplicates, s.Unique, s.Total)
}
