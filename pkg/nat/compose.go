package nat

import (
	"github.com/hknutzen/asaconv/pkg/vi"
)

// Compose links legs into a single chain with first match semantics.
// Nil elements are skipped. Result is nil if no leg is left.
func Compose(legs []*Leg) *vi.Transformation {
	var result *vi.Transformation
	for i := len(legs) - 1; i >= 0; i-- {
		l := legs[i]
		if l == nil {
			continue
		}
		result = &vi.Transformation{Guard: l.Guard, Steps: l.Steps, Else: result}
	}
	return result
}
