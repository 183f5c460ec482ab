package taskdef

import (
	"encoding/json"
	"fmt"

	"github.com/cschleiden/go-taskmapper/core"
)

// Marshal encodes a definition for stores persisting definitions as documents.
func Marshal(def *core.TaskDefinition) ([]byte, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshaling task definition %q: %w", def.Name, err)
	}

	return data, nil
}

func Unmarshal(data []byte) (*core.TaskDefinition, error) {
	var def core.TaskDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("unmarshaling task definition: %w", err)
	}

	return &def, nil
}
