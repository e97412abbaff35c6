// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/smartcity-advisor/pkg/types"
)

const (
	tempSeparator = " / "
	tempSuffix    = "°C"
)

// ExtractTemperatureRange parses an annual range such as "10°C / 25°C"
// into its minimum and maximum. Both halves must carry the °C suffix and
// be separated by " / ".
func ExtractTemperatureRange(text string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(text), tempSeparator)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %w: temperature range %q lacks %q separator",
			types.ErrData, types.ErrParse, text, strings.TrimSpace(tempSeparator))
	}

	var out [2]float64
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !strings.HasSuffix(p, tempSuffix) {
			return 0, 0, fmt.Errorf("%w: %w: temperature %q lacks %s suffix",
				types.ErrData, types.ErrParse, p, tempSuffix)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(p, tempSuffix)), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %w: temperature %q: %v", types.ErrData, types.ErrParse, p, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("%w: %w: temperature %q is not finite", types.ErrData, types.ErrParse, p)
		}
		out[i] = v
	}
	return out[0], out[1], nil
}
