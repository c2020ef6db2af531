// Command weightctl simulates a single parachain block through the
// dynamic block-weight controller and prints the resulting mode trace.
//
// Modeled on cmd/rubin-node's flag.FlagSet + testable run() shape.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"blockweight.dev/parachain/blockbuilder"
	"blockweight.dev/parachain/control"
	"blockweight.dev/parachain/digest"
	"blockweight.dev/parachain/host"
	"blockweight.dev/parachain/modestore"
	"blockweight.dev/parachain/weight"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("weightctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	numberOfCores := fs.Int("cores", 1, "number of relay cores assigned to this parachain")
	targetBlockRate := fs.Int("target-block-rate", 1, "desired blocks per 6s relay-slot period")
	bundleIndex := fs.Int("bundle-index", 0, "this block's index within its assigned core (0 = first)")
	numExtrinsics := fs.Int("extrinsics", 3, "number of synthetic Normal-class extrinsics to simulate")
	extrinsicRefTime := fs.Uint64("extrinsic-ref-time", 0, "ref_time each synthetic extrinsic announces (0 = small default)")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	d := digest.New()
	d.Append(digest.Item{Kind: digest.KindCoreInfo, CoreInfo: &digest.CoreInfo{NumberOfCores: uint16(*numberOfCores)}})
	d.Append(digest.Item{Kind: digest.KindBundleInfo, BundleInfo: &digest.BundleInfo{Index: uint32(*bundleIndex)}})

	rt := blockbuilder.NewRuntime(d, uint32(*targetBlockRate), nil)

	wi := blockbuilder.StaticWeightInfo{
		MaxWeight:     weight.Weight{RefTime: 1_000_000, ProofSize: 1_000},
		FullCore:      weight.Weight{RefTime: 100_000, ProofSize: 100},
		StaysFraction: weight.Weight{RefTime: 50_000, ProofSize: 50},
	}
	ctrl := control.New(control.Config{Logger: logger}, modestore.New(), wi)

	refTime := *extrinsicRefTime
	if refTime == 0 {
		refTime = 1_000
	}
	extrinsics := make([]blockbuilder.Extrinsic, 0, *numExtrinsics)
	for i := 0; i < *numExtrinsics; i++ {
		w := weight.Weight{RefTime: refTime}
		extrinsics = append(extrinsics, blockbuilder.Extrinsic{
			Info:         host.DispatchInfo{Class: host.Normal, TotalWeight: w},
			Length:       64,
			ActualWeight: w,
		})
	}

	trace := blockbuilder.Pipeline(rt, ctrl, nil, extrinsics)

	fmt.Fprintf(stdout, "pre_inherent_mode=%s\n", trace.PreInherentModeAfter)
	for _, o := range trace.Outcomes {
		if o.Rejected {
			fmt.Fprintf(stdout, "extrinsic[%d] rejected: %v\n", o.Index, o.Err)
			continue
		}
		fmt.Fprintf(stdout, "extrinsic[%d] refund=(ref_time=%d proof_size=%d) mode=%s\n",
			o.Index, o.Refund.RefTime, o.Refund.ProofSize, o.ModeAfter)
	}
	fmt.Fprintf(stdout, "final_mode=%s used_full_core=%t\n", trace.FinalMode, trace.UsedFullCore)

	return 0
}
