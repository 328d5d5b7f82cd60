package hatanaka

import (
	"fmt"

	"github.com/crxkit/crinex/errs"
)

// MaxOrder is the highest compression order any kernel supports, the
// standardized historical maximum. The order actually used by a field may be
// lower and may change at any re-initialization.
const MaxOrder = 5

// NumericKernel is the recursive integer differencer/recoverer for one
// scalar field's time series. It converts between the field's absolute
// scaled-integer sequence and its n-th order difference sequence using exact
// integer arithmetic.
//
// The kernel keeps two difference ladders: state holds the ladder for the
// current sample, prev the ladder from the prior successful call. After
// Recover, state[0] is the absolute field value at the current epoch.
//
// A kernel is unusable until Reset introduces its first absolute value;
// Reset is also the only way to change the order mid-stream.
type NumericKernel struct {
	order int
	depth int
	state [MaxOrder + 1]int64
	prev  [MaxOrder + 1]int64
	ready bool
}

// NewNumericKernel returns an uninitialized kernel. Recover and Difference
// fail until Reset is called.
func NewNumericKernel() *NumericKernel {
	return &NumericKernel{}
}

// Reset (re)initializes the kernel with a compression order and the field's
// absolute value at the current epoch. Order 0 means every subsequent value
// is transmitted absolute.
func (k *NumericKernel) Reset(order int, first int64) error {
	if order < 0 || order > MaxOrder {
		return fmt.Errorf("%w: order %d, maximum %d", errs.ErrOrderTooLarge, order, MaxOrder)
	}

	k.order = order
	k.depth = 0
	k.state = [MaxOrder + 1]int64{}
	k.prev = [MaxOrder + 1]int64{}
	k.prev[0] = first
	k.ready = true

	return nil
}

// Recover consumes one differenced value and returns the absolute value it
// encodes (decompression direction).
func (k *NumericKernel) Recover(diff int64) (int64, error) {
	if !k.ready {
		return 0, fmt.Errorf("%w: recover before reset", errs.ErrKernelNotInitialized)
	}

	if k.depth < k.order {
		k.depth++
	}

	k.state[k.depth] = diff
	for i := k.depth - 1; i >= 0; i-- {
		k.state[i] = k.state[i+1] + k.prev[i]
	}
	k.prev = k.state

	return k.state[0], nil
}

// Difference consumes one absolute value and returns the differenced value
// Recover would need to reproduce it (compression direction, exact inverse).
func (k *NumericKernel) Difference(absolute int64) (int64, error) {
	if !k.ready {
		return 0, fmt.Errorf("%w: difference before reset", errs.ErrKernelNotInitialized)
	}

	if k.depth < k.order {
		k.depth++
	}

	k.state[0] = absolute
	for i := 1; i <= k.depth; i++ {
		k.state[i] = k.state[i-1] - k.prev[i-1]
	}
	k.prev = k.state

	return k.state[k.depth], nil
}

// Initialized reports whether the kernel has received its first Reset.
func (k *NumericKernel) Initialized() bool {
	return k.ready
}

// Order returns the order the kernel was last reset to.
func (k *NumericKernel) Order() int {
	return k.order
}

// Clone returns an independent copy of the kernel with identical state.
func (k *NumericKernel) Clone() *NumericKernel {
	c := *k
	return &c
}
