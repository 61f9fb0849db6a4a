// Package schema validates the structure of a raw event model before it is decoded.
//
// The model schema is embedded in the binary (model.schema.json) and compiled once with
// santhosh-tekuri/jsonschema. Validation runs against JSON-shaped values (the result of
// decoding JSON or YAML into any):
//
//	v, err := schema.Default()
//	if err != nil {
//	    return err
//	}
//	if err := v.Validate(raw); err != nil {
//	    for _, fe := range schema.ValidationErrors(err) {
//	        fmt.Println(fe)
//	    }
//	}
//
// Structural failures are reported as an *AggregateError of *ValidationError, one per failing
// instance location. Referential problems (a sourcedFrom name that matches no event) are not
// structural and are never reported here.
package schema
