// Command gen-conformance-fixtures populates a bbolt fixture database with
// the concrete scenarios a block-weight controller implementation must
// reproduce, in the same golden-vector role the node's own conformance
// generator plays for consensus vectors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"blockweight.dev/parachain/conformance"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gen-conformance-fixtures", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("out", "conformance-fixtures.db", "path to the bbolt database to (re)populate")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store, err := conformance.OpenStore(*out)
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return 1
	}
	defer store.Close()

	for _, f := range scenarios() {
		if err := store.Put(f); err != nil {
			fmt.Fprintf(stderr, "put fixture %s: %v\n", f.Name, err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote %s\n", f.Name)
	}
	return 0
}

// scenarios returns the spec's concrete, named block-weight scenarios as
// conformance fixtures.
func scenarios() []conformance.Fixture {
	return []conformance.Fixture{
		{
			Name:              "single-core-one-target-block-no-traffic",
			NumberOfCores:     1,
			HaveBundleInfo:    true,
			TargetBlockRate:   1,
			ExpectedFinalMode: "ref_time=2000000000000 proof_size=5242880",
		},
		{
			Name:            "promoted-overrun-resolves-full-core",
			NumberOfCores:   1,
			HaveBundleInfo:  true,
			BundleIndex:     0,
			TargetBlockRate: 4,
			Extrinsics: []conformance.FixtureExtrinsic{
				{Class: "Normal", TotalWeightRefTime: 2_000_000_000_000, ActualWeightRefTime: 2_000_000_000_000},
			},
			ExpectedUsedFullCore: true,
		},
		{
			Name:            "not-first-in-core-overrun-rejects",
			NumberOfCores:   1,
			HaveBundleInfo:  true,
			BundleIndex:     1,
			TargetBlockRate: 4,
			Extrinsics: []conformance.FixtureExtrinsic{
				{Class: "Normal", TotalWeightRefTime: 2_000_000_000_000},
			},
			ExpectedUsedFullCore: false,
		},
		{
			Name:                 "inherent-overrun-forces-full-core",
			NumberOfCores:        1,
			HaveBundleInfo:       true,
			BundleIndex:          0,
			TargetBlockRate:      4,
			PreConsumedRefTime:   2_000_000_000_000,
			ExpectedUsedFullCore: true,
		},
	}
}
