package alphasign

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nerrad567/alphasign-core/internal/sign"
)

// toParams flattens JSON parameter values into the string form the sign
// action builders expect. Numbers lose no precision for integers; null
// values are dropped.
func toParams(in map[string]any) sign.MapParams {
	out := make(sign.MapParams, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case json.Number:
			out[k] = val.String()
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
