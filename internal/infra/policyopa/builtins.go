package policyopa

var allowedBuiltins = map[string]struct{}{
	"assign":            {},
	"concat":            {},
	"count":             {},
	"endswith":          {},
	"eq":                {},
	"equal":             {},
	"gt":                {},
	"gte":               {},
	"internal.member_2": {},
	"lower":             {},
	"lt":                {},
	"lte":               {},
	"neq":               {},
	"object.get":        {},
	"regex.match":       {},
	"sprintf":           {},
	"startswith":        {},
	"to_number":         {},
	"trim":              {},
	"trim_space":        {},
	"upper":             {},
}
