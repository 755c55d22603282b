// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

/*Package dedup removes duplicate reads from FASTA and FASTQ files.

  Duplicate Concepts:

  Two reads are duplicates if the first PrefixLength bases of their
  sequences are identical. A PrefixLength of zero compares whole
  sequences. Identifiers, descriptions and qualities play no part.

  Two pairs P1 and P2 are duplicates if P1.r1 and P2.r1 are duplicates
  and P1.r2 and P2.r2 are duplicates. The comparison is positional: a
  pair and the pair with its mates swapped are not duplicates.

  Sequences are never stored. Each read (or pair) is reduced to a
  64-bit fingerprint, and reads with equal fingerprints form a
  cluster. Reads with identical prefixes always share a cluster. Reads
  with different prefixes share a cluster only if their fingerprints
  collide, so a small number of distinct reads may be reported as
  duplicates. This is accepted in exchange for constant memory per
  cluster.

  The first read of a cluster is its representative. The
  representative is written to the deduplicated outputs and every
  later member is dropped. Reads are processed in input order, so
  the outputs are the inputs with duplicates removed, in their
  original order.

  Outputs:

  Deduplicated reads are written in the format of the input, one
  output per input. Optionally, a cluster table maps every read to
  the representative of its cluster:

    representative read id,read id
    id_a,id_a
    id_a,id_b

  and a size table reports one row per cluster:

    representative read id,cluster size
    id_a,2

  Tables whose path ends in .tsv are tab separated; all others are
  CSV.
*/
package dedup
