// Package control implements the Mode Controller: the state machine that
// decides, per block and per extrinsic, whether the assembling parachain
// block may consume only its fractional share of a relay core or the entire
// core.
//
// Controller is invoked at three well-defined points per extrinsic
// (pre-inherent hook, pre-dispatch, post-dispatch) plus an additional
// max-weight query used by external consumers. It consumes weight, digest,
// and modestore to transition modes, reject extrinsics, and compute weight
// refunds; it never touches any concrete runtime, only the host.Runtime and
// host.WeightInfo boundary contracts.
package control

import (
	"fmt"
	"log/slog"

	"blockweight.dev/parachain/digest"
	"blockweight.dev/parachain/host"
	"blockweight.dev/parachain/modestore"
	"blockweight.dev/parachain/weight"
)

// ErrorCode identifies the kind of rejection PreValidate returned.
type ErrorCode string

// ExhaustsResources is returned when an extrinsic announces more weight than
// its budget allows and does not qualify for PotentialFullCore promotion.
const ExhaustsResources ErrorCode = "ExhaustsResources"

// Rejected is the transaction-validity error PreValidate returns. It never
// mutates the mode store: the block may continue with other extrinsics.
type Rejected struct {
	Code ErrorCode
	Msg  string
}

func (e *Rejected) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// DefaultMaxTransactionToConsider is the window (in extrinsics, counted from
// the first transaction within the mode) after which a weight-overflowing
// extrinsic may no longer promote to PotentialFullCore.
const DefaultMaxTransactionToConsider uint32 = 10

// Config configures a Controller.
type Config struct {
	// MaxTransactionToConsider is MAX_TRANSACTION_TO_CONSIDER (default 10 if
	// zero).
	MaxTransactionToConsider uint32
	// OnlyOperational restricts PotentialFullCore promotion to Operational
	// class extrinsics.
	OnlyOperational bool
	// Logger receives the pre-inherent warning distinguishing a normal
	// first-in-core overrun from a bug. Defaults to slog.Default() if nil.
	Logger *slog.Logger
}

func (c Config) maxTransactionToConsider() uint32 {
	if c.MaxTransactionToConsider == 0 {
		return DefaultMaxTransactionToConsider
	}
	return c.MaxTransactionToConsider
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// DefaultConfig returns the configuration the hook implementations assume
// when a deployment does not override it. It is equivalent to the zero
// Config: every field's zero value is already its documented default, so
// DefaultConfig exists for callers that want an explicit, self-documenting
// starting point rather than a bare literal.
func DefaultConfig() Config {
	return Config{
		MaxTransactionToConsider: DefaultMaxTransactionToConsider,
		OnlyOperational:          false,
	}
}

// Controller is the Mode Controller state machine.
type Controller struct {
	cfg        Config
	store      *modestore.Store
	weightInfo host.WeightInfo
}

// New builds a Controller over store, using weightInfo for refund constants.
func New(cfg Config, store *modestore.Store, weightInfo host.WeightInfo) *Controller {
	return &Controller{cfg: cfg, store: store, weightInfo: weightInfo}
}

// targetWeightForClass computes the class-level target weight: the class's
// configured max_total if present, else the block's fractional target minus
// base_block (saturating — spec.md §9 Open Question: a pathological config
// could make this subtraction underflow, so it saturates at zero rather than
// panicking or wrapping).
func targetWeightForClass(rt host.Runtime, class host.DispatchClass) weight.Weight {
	limits := rt.ClassLimits(class)
	if limits.MaxTotal != nil {
		return *limits.MaxTotal
	}
	fractional := weight.TargetBlockWeight(rt.Digest(), rt.TargetBlockRate())
	return fractional.SatSub(limits.BaseBlock)
}

// PreValidate implements §4.4.1. It is invoked once per extrinsic (inherent
// or not) before the inner transaction pipeline validates it.
func (c *Controller) PreValidate(rt host.Runtime, info host.DispatchInfo, length uint32) error {
	isNotInherent := rt.InherentsApplied()
	extrinsicIndex, _ := rt.ExtrinsicIndex()
	var transactionIndex *uint32
	if isNotInherent {
		idx := extrinsicIndex
		transactionIndex = &idx
	}

	d := rt.Digest()
	firstBlockInCore := digest.IsFirstBlockInCore(d)
	announced := info.TotalWeight.Add(weight.FromProofSize(uint64(length)))

	var rejection error
	var wasPresent bool
	c.store.Mutate(func(cur modestore.BlockWeightMode, present bool) modestore.BlockWeightMode {
		wasPresent = present
		if !present {
			cur = modestore.BlockWeightMode{Kind: modestore.FractionOfCore, FirstTransactionIndex: transactionIndex}
		}

		if cur.Kind == modestore.FullCore {
			return cur
		}

		// A PotentialFullCore mode must resolve on the same extrinsic's
		// post-dispatch; observing it here means an extrinsic completed
		// without its post-dispatch hook running, which is a host bug. We
		// do not panic (the controller must not be the thing that takes the
		// block down); we log and treat it like FractionOfCore for the
		// purposes of this transition.
		if cur.Kind == modestore.PotentialFullCore {
			c.cfg.logger().Error("block-weight: PotentialFullCore observed at pre_validate entry, an extrinsic completed without post-dispatch")
		}

		firstTxIdx := cur.FirstTransactionIndex

		blockWeightOverLimit := extrinsicIndex == 0 &&
			rt.ConsumedWeight().AnyGreaterThan(weight.TargetBlockWeight(d, rt.TargetBlockRate()))

		target := targetWeightForClass(rt, info.Class)

		if blockWeightOverLimit {
			digest.EmitUseFullCore(d)
			if !firstBlockInCore {
				rt.RegisterExtraWeight(weight.Full, host.Mandatory)
			}
			c.cfg.logger().Error("block-weight: inherent phase exceeded the target block weight; forcing FullCore",
				"first_block_in_core", firstBlockInCore)
			return modestore.BlockWeightMode{Kind: modestore.FullCore}
		}

		if !announced.AnyGreaterThan(target) {
			return modestore.BlockWeightMode{Kind: modestore.FractionOfCore, FirstTransactionIndex: orTxIdx(firstTxIdx, transactionIndex)}
		}

		classAllowed := !c.cfg.OnlyOperational || info.Class == host.Operational
		idxGap := saturatingSubU32(valueOr(transactionIndex, 0), valueOr(firstTxIdx, 0))
		withinWindow := idxGap < c.cfg.maxTransactionToConsider()

		if firstBlockInCore && withinWindow && classAllowed {
			return modestore.BlockWeightMode{
				Kind:                  modestore.PotentialFullCore,
				TargetWeight:          target,
				FirstTransactionIndex: orTxIdx(firstTxIdx, transactionIndex),
			}
		}

		rejection = &Rejected{Code: ExhaustsResources, Msg: "extrinsic announced weight exceeds the current block-weight target"}
		return cur
	})

	// A rejection leaves the store as it found it: an empty store is not
	// left holding the lazily initialized mode.
	if rejection != nil && !wasPresent {
		c.store.Reset()
	}
	return rejection
}

// PostDispatch implements §4.4.2. consumed is the actual weight used by the
// class after dispatch (frame_system::BlockWeight::get() equivalent). It
// returns the weight to refund: the excess of the extension's pre-charged
// worst case over what the taken branch actually consumed.
func (c *Controller) PostDispatch(rt host.Runtime, info host.DispatchInfo, consumed weight.Weight) weight.Weight {
	var refund weight.Weight
	c.store.Mutate(func(cur modestore.BlockWeightMode, present bool) modestore.BlockWeightMode {
		if !present {
			refund = weight.Zero
			return cur
		}

		wMax := c.weightInfo.TxExtensionMaxWeight()

		switch cur.Kind {
		case modestore.FullCore:
			refund = wMax.SatSub(c.weightInfo.FullCoreWeight())
			return cur

		case modestore.FractionOfCore:
			d := rt.Digest()
			target := weight.TargetBlockWeight(d, rt.TargetBlockRate())
			refund = wMax.SatSub(c.weightInfo.StaysFractionOfCoreWeight())

			if !rt.ConsumedWeight().AnyGreaterThan(target) {
				return cur
			}

			c.cfg.logger().Error("block-weight: extrinsic used more weight than announced, pushing the block above the allowed limit")
			if !digest.IsFirstBlockInCore(d) {
				rt.RegisterExtraWeight(weight.Full, host.Mandatory)
			}
			digest.EmitUseFullCore(d)
			return modestore.BlockWeightMode{Kind: modestore.FullCore}

		case modestore.PotentialFullCore:
			refund = weight.Zero
			if consumed.AnyGreaterThan(cur.TargetWeight) {
				digest.EmitUseFullCore(rt.Digest())
				return modestore.BlockWeightMode{Kind: modestore.FullCore}
			}
			return modestore.BlockWeightMode{Kind: modestore.FractionOfCore, FirstTransactionIndex: cur.FirstTransactionIndex}

		default:
			refund = weight.Zero
			return cur
		}
	})
	return refund
}

// PreInherent implements §4.4.3: the pre-inherent hook, run once per block
// before any inherent is applied.
func (c *Controller) PreInherent(rt host.Runtime) {
	d := rt.Digest()
	target := weight.TargetBlockWeight(d, rt.TargetBlockRate())
	if !rt.ConsumedWeight().AnyGreaterThan(target) {
		return
	}

	firstBlockInCore := digest.IsFirstBlockInCore(d)
	if firstBlockInCore {
		c.cfg.logger().Warn("block-weight: consumption already exceeds target before inherents; first block in core, entering FullCore")
	} else {
		c.cfg.logger().Warn("block-weight: consumption already exceeds target before inherents and this is not the first block in core; this is a bug")
	}

	c.store.Put(modestore.BlockWeightMode{Kind: modestore.FullCore})
	digest.EmitUseFullCore(d)
}

// MaxWeight implements the Get<Weight> query (§4.4.4): the current cap
// external consumers should treat as the block's weight ceiling.
func (c *Controller) MaxWeight(rt host.Runtime) weight.Weight {
	d := rt.Digest()
	target := weight.TargetBlockWeight(d, rt.TargetBlockRate())
	maybeFull := target
	if digest.IsFirstBlockInCore(d) {
		maybeFull = weight.Full
	}

	if !rt.InherentsApplied() {
		return maybeFull
	}

	mode, present := c.store.Get()
	if !present {
		return maybeFull
	}
	switch mode.Kind {
	case modestore.FullCore, modestore.PotentialFullCore:
		return weight.Full
	case modestore.FractionOfCore:
		return target
	default:
		return maybeFull
	}
}

// Prepare is a pass-through hook: the transaction-extension composition
// contract (§6) requires prepare to delegate untouched to the inner
// extension. The controller itself has nothing to prepare.
func (c *Controller) Prepare() error {
	return nil
}

func orTxIdx(a, b *uint32) *uint32 {
	if a != nil {
		return a
	}
	return b
}

func valueOr(p *uint32, def uint32) uint32 {
	if p == nil {
		return def
	}
	return *p
}

func saturatingSubU32(a, b uint32) uint32 {
	if b > a {
		return 0
	}
	return a - b
}
