// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package dedup

import (
	"fmt"
	"sort"
	"strings"

	"blainsmith.com/go/seahash"
	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/minio/highwayhash"
)

// HashFunc computes a 64-bit fingerprint of a byte block. It must be
// deterministic for the lifetime of the process; it need not be
// cryptographically strong.
type HashFunc func([]byte) uint64

// DefaultHash is the name of the hash used when none is configured.
const DefaultHash = "seahash"

var highwayKey [highwayhash.Size]byte

func highwaySum64(b []byte) uint64 {
	return highwayhash.Sum64(b, highwayKey[:])
}

var hashFuncs = map[string]HashFunc{
	"seahash":     seahash.Sum64,
	"farm":        farm.Hash64,
	"highwayhash": highwaySum64,
}

// LookupHash returns the hash function registered under name. An empty
// name selects DefaultHash.
func LookupHash(name string) (HashFunc, error) {
	if name == "" {
		name = DefaultHash
	}
	h, ok := hashFuncs[name]
	if !ok {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("unknown hash %q, want one of %s", name, strings.Join(HashNames(), ", ")))
	}
	return h, nil
}

// HashNames lists the registered hash names in sorted order.
func HashNames() []string {
	names := make([]string, 0, len(hashFuncs))
	for name := range hashFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
