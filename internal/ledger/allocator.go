package ledger

import (
	"slices"

	errors "github.com/frahmantamala/revolv-ledger/internal"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every ledger amount carries.
const Scale int32 = 2

// Allocate splits total across contributions in proportion to each weight.
//
// Beneficiaries are walked in ascending id order. Every beneficiary but the
// last receives total*c/S rounded half away from zero at Scale, where S is
// the sum of contributions. The last beneficiary receives whatever remains,
// so the accumulated rounding error lands on it and the shares add up to
// total exactly. A rounded share never takes more than what is left; once
// total is used up the remaining beneficiaries get nothing.
//
// A zero S yields an empty result. Beneficiaries whose share is zero are left
// out.
func Allocate(total decimal.Decimal, contributions map[int64]decimal.Decimal) (map[int64]decimal.Decimal, error) {
	if total.IsNegative() || !total.Equal(total.Round(Scale)) {
		return nil, errors.ErrInvalidContribution
	}

	ids := make([]int64, 0, len(contributions))
	sum := decimal.Zero
	for id, c := range contributions {
		if c.IsNegative() {
			return nil, errors.ErrInvalidContribution
		}
		if c.IsZero() {
			continue
		}
		ids = append(ids, id)
		sum = sum.Add(c)
	}
	shares := make(map[int64]decimal.Decimal, len(ids))
	if sum.IsZero() {
		return shares, nil
	}
	slices.Sort(ids)

	allocated := decimal.Zero
	last := len(ids) - 1
	for i, id := range ids {
		share := total.Sub(allocated)
		if i < last {
			if rounded := total.Mul(contributions[id]).DivRound(sum, Scale); rounded.LessThan(share) {
				share = rounded
			}
		}
		allocated = allocated.Add(share)
		if share.IsZero() {
			continue
		}
		shares[id] = share
	}

	if err := checkAllocation(total, shares); err != nil {
		return nil, err
	}
	return shares, nil
}

func checkAllocation(total decimal.Decimal, shares map[int64]decimal.Decimal) error {
	sum := decimal.Zero
	for id, share := range shares {
		if !share.IsPositive() {
			return errors.NewInvariantViolation("non-positive share %s for user %d", share, id)
		}
		sum = sum.Add(share)
	}
	if len(shares) > 0 && !sum.Equal(total) {
		return errors.NewInvariantViolation("shares sum to %s, expected %s", sum, total)
	}
	return nil
}

// Proportion returns part/whole, or zero when whole is zero. A result
// outside [0, 1] means part was not drawn from whole. The quotient is rounded
// at decimal.DivisionPrecision, so the proportions of one whole add up to 1
// only within that precision.
func Proportion(part, whole decimal.Decimal) (decimal.Decimal, error) {
	if whole.IsZero() {
		return decimal.Zero, nil
	}
	prop := part.Div(whole)
	if prop.IsNegative() || prop.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, errors.NewInvariantViolation("proportion %s outside [0, 1]", prop)
	}
	return prop, nil
}

// SortedUserIDs returns the user ids keying m in ascending order.
func SortedUserIDs(m map[int64]decimal.Decimal) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
