// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	gerrors "github.com/grailbio/base/errors"
	"github.com/grailbio/fastxdedup/encoding/fasta"
	"github.com/grailbio/fastxdedup/encoding/fastx"
	"github.com/grailbio/fastxdedup/encoding/fastxpair"
	"github.com/grailbio/fastxdedup/encoding/table"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, seq string) fastx.Record {
	return fasta.NewRecord(id, "", []byte(seq))
}

type recordIterator []fastx.Record

func (it *recordIterator) Next() (fastx.Record, error) {
	if len(*it) == 0 {
		return nil, io.EOF
	}
	r := (*it)[0]
	*it = (*it)[1:]
	return r, nil
}

// pair builds a read pair through the synchronizer.
func pair(t *testing.T, id, seq1, seq2 string) *fastxpair.Pair {
	r1 := recordIterator{record(id, seq1)}
	r2 := recordIterator{record(id, seq2)}
	p, err := fastxpair.NewIterator(&r1, &r2).Next()
	require.NoError(t, err)
	return p
}

func TestInsertSingle(t *testing.T) {
	var b bytes.Buffer
	rows := table.NewWriter(&b, table.CSV)
	c, err := NewClusters(rows, ClustersOpts{PrefixLength: 10})
	require.NoError(t, err)

	keep, err := c.InsertSingle(record("id_a", "ACGTACGTACAAAAAAAAAA"))
	require.NoError(t, err)
	assert.True(t, keep)
	// Only the first 10 bases are compared.
	keep, err = c.InsertSingle(record("id_b", "ACGTACGTACTTTTTTTTTT"))
	require.NoError(t, err)
	assert.False(t, keep)
	require.NoError(t, rows.Flush())

	expect.EQ(t, b.String(), "representative read id,read id\nid_a,id_a\nid_a,id_b\n")
	expect.EQ(t, c.Summary(), Summary{Duplicates: 1, Unique: 1, Total: 2})
}

func TestInsertSingleWholeSequence(t *testing.T) {
	c, err := NewClusters(nil, ClustersOpts{})
	require.NoError(t, err)
	for _, r := range []fastx.Record{
		record("id_a", "ACGTACGTACAAAAAAAAAA"),
		record("id_b", "ACGTACGTACTTTTTTTTTT"),
		record("id_c", "ACGTACGTACAAAAAAAAAA"),
		record("id_d", "ACGT"),
	} {
		_, err := c.InsertSingle(r)
		require.NoError(t, err)
	}
	expect.EQ(t, c.Unique(), uint64(3))
	expect.EQ(t, c.Duplicates(), uint64(1))
	expect.EQ(t, c.Total(), uint64(4))
}

func TestShortSequence(t *testing.T) {
	// Sequences shorter than the prefix are compared whole.
	c, err := NewClusters(nil, ClustersOpts{PrefixLength: 100})
	require.NoError(t, err)
	keep, err := c.InsertSingle(record("id_a", "ACGT"))
	require.NoError(t, err)
	assert.True(t, keep)
	keep, err = c.InsertSingle(record("id_b", "ACGTA"))
	require.NoError(t, err)
	assert.True(t, keep)
	keep, err = c.InsertSingle(record("id_c", "ACGT"))
	require.NoError(t, err)
	assert.False(t, keep)
}

func TestInsertPair(t *testing.T) {
	var b bytes.Buffer
	rows := table.NewWriter(&b, table.CSV)
	c, err := NewClusters(rows, ClustersOpts{PrefixLength: 4})
	require.NoError(t, err)

	for _, test := range []struct {
		id, seq1, seq2 string
		keep           bool
	}{
		{"id_a", "AAAACC", "GGGGTT", true},
		{"id_b", "AAAAGG", "GGGGAA", false},
		// Swapped mates are a different pair.
		{"id_c", "GGGG", "AAAA", true},
		// A matching r1 alone is not enough.
		{"id_d", "AAAA", "CCCC", true},
		{"id_e", "GGGG", "AAAA", false},
	} {
		keep, err := c.InsertPair(pair(t, test.id, test.seq1, test.seq2))
		require.NoError(t, err)
		assert.Equal(t, test.keep, keep, test.id)
	}
	require.NoError(t, rows.Flush())
	expect.EQ(t, b.String(), strings.Join([]string{
		"representative read id,read id",
		"id_a,id_a",
		"id_a,id_b",
		"id_c,id_c",
		"id_d,id_d",
		"id_c,id_e",
		"",
	}, "\n"))
	expect.EQ(t, c.Summary(), Summary{Duplicates: 2, Unique: 3, Total: 5})
}

func TestWriteSizes(t *testing.T) {
	c, err := NewClusters(nil, ClustersOpts{PrefixLength: 10})
	require.NoError(t, err)
	for _, r := range []fastx.Record{
		record("id_a", "ACGTACGTACAAAAAAAAAA"),
		record("id_b", "ACGTACGTACTTTTTTTTTT"),
		record("id_c", "TTTTTTTTTTAAAAAAAAAA"),
	} {
		_, err := c.InsertSingle(r)
		require.NoError(t, err)
	}

	var b bytes.Buffer
	require.NoError(t, c.WriteSizes(table.NewWriter(&b, table.CSV)))
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "representative read id,cluster size", lines[0])
	assert.ElementsMatch(t, []string{"id_a,2", "id_c,1"}, lines[1:])
}

func TestWriteSizesEmpty(t *testing.T) {
	c, err := NewClusters(nil, ClustersOpts{})
	require.NoError(t, err)
	var b bytes.Buffer
	require.NoError(t, c.WriteSizes(table.NewWriter(&b, table.TSV)))
	expect.EQ(t, b.String(), "representative read id\tcluster size\n")
}

// failingRows accepts the first n rows and then fails.
type failingRows struct {
	n    int
	rows [][]string
}

var errRows = errors.New("row sink failed")

func (f *failingRows) Write(fields ...string) error {
	if len(f.rows) >= f.n {
		return errRows
	}
	f.rows = append(f.rows, fields)
	return nil
}

func (f *failingRows) Flush() error { return nil }

func TestRowSinkFailure(t *testing.T) {
	_, err := NewClusters(&failingRows{n: 0}, ClustersOpts{})
	assert.Equal(t, errRows, err)

	rows := &failingRows{n: 2}
	c, err := NewClusters(rows, ClustersOpts{})
	require.NoError(t, err)
	keep, err := c.InsertSingle(record("id_a", "ACGT"))
	require.NoError(t, err)
	assert.True(t, keep)

	// The insertion is counted even though its row could not be written.
	keep, err = c.InsertSingle(record("id_b", "ACGT"))
	assert.Equal(t, errRows, err)
	assert.False(t, keep)
	expect.EQ(t, c.Summary(), Summary{Duplicates: 1, Unique: 1, Total: 2})

	keep, err = c.InsertSingle(record("id_c", "TTTT"))
	assert.Equal(t, errRows, err)
	assert.True(t, keep)
	expect.EQ(t, c.Unique(), uint64(2))
}

func TestWriteSizesFailure(t *testing.T) {
	c, err := NewClusters(nil, ClustersOpts{})
	require.NoError(t, err)
	for _, r := range []fastx.Record{
		record("id_a", "AAAA"),
		record("id_b", "CCCC"),
		record("id_c", "GGGG"),
		record("id_d", "AAAA"),
	} {
		_, err := c.InsertSingle(r)
		require.NoError(t, err)
	}
	before := c.Summary()

	rows := &failingRows{n: 2}
	assert.Equal(t, errRows, c.WriteSizes(rows))
	// Rows written before the failure stay in the sink.
	require.Len(t, rows.rows, 2)
	assert.Equal(t, sizeHeader, rows.rows[0])
	assert.Len(t, rows.rows[1], 2)
	expect.EQ(t, c.Summary(), before)
}

func TestDeterminism(t *testing.T) {
	records := []fastx.Record{
		record("id_a", "ACGTACGTACAAAAAAAAAA"),
		record("id_b", "ACGTACGTACTTTTTTTTTT"),
		record("id_c", "TTTTTTTTTTAAAAAAAAAA"),
		record("id_d", "TTTTTTTTTTCCCCCCCCCC"),
		record("id_e", "GGGG"),
	}
	run := func(h HashFunc) Summary {
		c, err := NewClusters(nil, ClustersOpts{Hash: h, PrefixLength: 10})
		require.NoError(t, err)
		for _, r := range records {
			_, err := c.InsertSingle(r)
			require.NoError(t, err)
		}
		for _, p := range []*fastxpair.Pair{
			pair(t, "id_f", "AAAA", "CCCC"),
			pair(t, "id_g", "AAAA", "CCCC"),
		} {
			_, err := c.InsertPair(p)
			require.NoError(t, err)
		}
		return c.Summary()
	}
	for _, name := range HashNames() {
		h, err := LookupHash(name)
		require.NoError(t, err)
		first := run(h)
		assert.Equal(t, first, run(h), name)
		assert.Equal(t, first.Total, first.Unique+first.Duplicates, name)
	}
}

func TestNegativePrefix(t *testing.T) {
	_, err := NewClusters(nil, ClustersOpts{PrefixLength: -1})
	require.Error(t, err)
	assert.True(t, gerrors.Is(gerrors.Invalid, err))
}

func TestHashes(t *testing.T) {
	for _, name := range HashNames() {
		h, err := LookupHash(name)
		require.NoError(t, err)
		c, err := NewClusters(nil, ClustersOpts{Hash: h, PrefixLength: 10})
		require.NoError(t, err)
		for _, r := range []fastx.Record{
			record("id_a", "ACGTACGTACAAAAAAAAAA"),
			record("id_b", "ACGTACGTACTTTTTTTTTT"),
			record("id_c", "TTTTTTTTTTAAAAAAAAAA"),
		} {
			_, err := c.InsertSingle(r)
			require.NoError(t, err)
		}
		assert.Equal(t, Summary{Duplicates: 1, Unique: 2, Total: 3}, c.Summary(), name)
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Duplicates: 1, Unique: 2, Total: 3}
	expect.EQ(t, s.String(),
		"duplicates:                  1\n"+
			"unique reads:                2\n"+
			"total reads:                 3\n")
}
