// Package validator builds declarative input checks out of small Rule values.
//
// Each helper returns a Rule pairing a Check func with the ValidationError to
// report when the check fails. Apply evaluates every rule and aggregates the
// failures into ValidationErrors, which implements error, so a caller gets
// all field problems from one return:
//
//	err := validator.Apply(
//		validator.Required("title", in.Title),
//		validator.OneOf("kind", in.Kind, kinds),
//		validator.RequiredSlice("channels", in.Channels),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//		for _, f := range verrs.Fields() { ... }
//	}
//
// Rules are grouped per file: strings, choices, collections, dates and
// patterns. The package holds no state and is safe for concurrent use.
package validator
