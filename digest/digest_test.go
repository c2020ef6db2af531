package digest_test

import (
	"testing"

	"blockweight.dev/parachain/digest"
)

func TestFindCoreInfo(t *testing.T) {
	d := digest.New()
	if _, ok := digest.FindCoreInfo(d); ok {
		t.Fatal("expected no CoreInfo in empty digest")
	}

	d.Append(digest.Item{Kind: digest.KindCoreInfo, CoreInfo: &digest.CoreInfo{NumberOfCores: 3}})
	ci, ok := digest.FindCoreInfo(d)
	if !ok || ci.NumberOfCores != 3 {
		t.Fatalf("got %+v, %v, want NumberOfCores=3", ci, ok)
	}
}

func TestFindBundleInfo(t *testing.T) {
	d := digest.New()
	if _, ok := digest.FindBundleInfo(d); ok {
		t.Fatal("expected no BundleInfo in empty digest")
	}

	d.Append(digest.Item{Kind: digest.KindBundleInfo, BundleInfo: &digest.BundleInfo{Index: 2}})
	bi, ok := digest.FindBundleInfo(d)
	if !ok || bi.Index != 2 {
		t.Fatalf("got %+v, %v, want Index=2", bi, ok)
	}
}

func TestIsFirstBlockInCore(t *testing.T) {
	// Absent BundleInfo is treated as not-first.
	if digest.IsFirstBlockInCore(digest.New()) {
		t.Fatal("expected false when BundleInfo is absent")
	}

	first := digest.New()
	first.Append(digest.Item{Kind: digest.KindBundleInfo, BundleInfo: &digest.BundleInfo{Index: 0}})
	if !digest.IsFirstBlockInCore(first) {
		t.Fatal("expected true for Index=0")
	}

	notFirst := digest.New()
	notFirst.Append(digest.Item{Kind: digest.KindBundleInfo, BundleInfo: &digest.BundleInfo{Index: 1}})
	if digest.IsFirstBlockInCore(notFirst) {
		t.Fatal("expected false for Index=1")
	}
}

func TestHasUseFullCore(t *testing.T) {
	d := digest.New()
	if digest.HasUseFullCore(d) {
		t.Fatal("expected false on empty digest")
	}
	d.Append(digest.Item{Kind: digest.KindUseFullCore})
	if !digest.HasUseFullCore(d) {
		t.Fatal("expected true after appending UseFullCore")
	}
}

// P2: at most one UseFullCore item per block, even across repeated calls.
func TestEmitUseFullCore_Idempotent(t *testing.T) {
	d := digest.New()
	digest.EmitUseFullCore(d)
	digest.EmitUseFullCore(d)
	digest.EmitUseFullCore(d)

	count := 0
	for _, it := range d.Items() {
		if it.Kind == digest.KindUseFullCore {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("got %d UseFullCore items, want exactly 1", count)
	}
}

func TestEmitUseFullCore_NilLogIsNoop(t *testing.T) {
	// Must not panic.
	digest.EmitUseFullCore(nil)
}
