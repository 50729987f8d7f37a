package validation

// Enum values accepted by the API.
var (
	ValidExportFormats  = []string{"csv", "xlsx", "pdf"}
	ValidTieBreakPolicy = []string{"lowest_price", "all"}
)
