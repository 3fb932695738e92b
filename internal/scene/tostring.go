package scene

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// jsonString renders a component's debug representation. Logging aid only,
// not a persisted format.
func jsonString(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
