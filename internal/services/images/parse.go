package images

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// parseReconciliationData turns the raw metadata container into its
// validated canonical shape. The shape errors are deliberately distinct:
// a missing container is not the same rejection as a container that is a
// JSON array or scalar, and both differ from an object failing the item
// schema. Evaluated once at the boundary, before anything else touches the
// payload.
func parseReconciliationData(validate *validator.Validate, raw json.RawMessage) (*ReconciliationData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, newError(KindInvalidArgument, "image data is not defined")
	}
	if trimmed[0] != '{' {
		return nil, newError(KindInvalidArgument, "image data is invalid")
	}

	var data ReconciliationData
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return nil, wrapError(KindInvalidArgument, "image data is invalid", err)
	}

	if err := validate.Struct(&data); err != nil {
		return nil, wrapError(KindInvalidArgument, "image data is invalid", err)
	}

	return &data, nil
}
