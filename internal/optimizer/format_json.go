package optimizer

import (
	"encoding/json"
)

// JSONFormatter formats an optimizer result as JSON.
type JSONFormatter struct {
	Pretty bool
}

// Format marshals the comparison, optionally indented.
func (jf *JSONFormatter) Format(result *OptimizerResult) (string, error) {
	var data []byte
	var err error

	if jf.Pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return "", err
	}

	return string(data), nil
}
