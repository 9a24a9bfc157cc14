package sales

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Products may exceed the stated budget by 20%: price <= amount*6/5.
const (
	headroomNum = 6
	headroomDen = 5

	// maxAmount keeps Amount*headroomNum within int64.
	maxAmount = math.MaxInt64 / headroomNum
)

// Budget is a parsed price ceiling. The zero value means "unknown".
type Budget struct {
	Amount int64
	Known  bool
}

// Ceiling is the highest acceptable product price.
func (b Budget) Ceiling() (int64, bool) {
	if !b.Known {
		return 0, false
	}
	return b.Amount * headroomNum / headroomDen, true
}

// Allows reports whether price fits under the ceiling; unknown budgets allow everything.
func (b Budget) Allows(price int64) bool {
	if !b.Known {
		return true
	}
	if price > math.MaxInt64/headroomDen {
		return false
	}
	return price*headroomDen <= b.Amount*headroomNum
}

// ParseBudget reads the first run of digits in s; a "k"/"K" anywhere in s
// multiplies it by 1000. Anything unparsable, or too large to compare against
// prices, yields an unknown budget.
func ParseBudget(s string) Budget {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return Budget{}
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	n, err := strconv.ParseInt(s[start:end], 10, 64)
	if err != nil {
		return Budget{}
	}
	if strings.ContainsAny(s, "kK") {
		if n > maxAmount/1000 {
			return Budget{}
		}
		n *= 1000
	}
	if n > maxAmount {
		return Budget{}
	}
	return Budget{Amount: n, Known: true}
}

func isDigit(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsDigit(r)
}
