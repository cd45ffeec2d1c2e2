package dashboard

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/goalgenie/pkg/domain/goal"
)

const goalRequestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["title", "startDate", "numberOfDays", "hoursPerDay"],
  "properties": {
    "title": { "type": "string", "minLength": 1 },
    "startDate": { "type": "string", "minLength": 1 },
    "numberOfDays": { "type": "integer", "minimum": 1, "maximum": 365 },
    "hoursPerDay": { "type": "number", "exclusiveMinimum": 0, "maximum": 24 },
    "externalReference": { "type": "string" }
  }
}`

var goalRequestSchemaLoader = gojsonschema.NewStringLoader(goalRequestSchemaJSON)

// validateGoalBody checks the shape of a POST /api/goals body before it is
// decoded. Semantic checks stay in goal.Request.Validate.
func validateGoalBody(body []byte) error {
	result, err := gojsonschema.Validate(goalRequestSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &goal.ValidationError{Fields: []goal.FieldError{{Field: "body", Message: fmt.Sprintf("malformed JSON: %v", err)}}}
	}
	if result.Valid() {
		return nil
	}

	verr := &goal.ValidationError{}
	for _, e := range result.Errors() {
		field := e.Field()
		if field == "(root)" {
			if property, ok := e.Details()["property"].(string); ok {
				field = property
			}
		}
		verr.Fields = append(verr.Fields, goal.FieldError{Field: field, Message: e.Description()})
	}
	return verr
}
