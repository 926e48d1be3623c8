package fetch

// Territories maps dependent territories and associated states to the
// country that governs them.
var Territories = map[string]string{
	// United Kingdom
	"GGY": "United Kingdom",
	"JEY": "United Kingdom",
	"IMN": "United Kingdom",
	"FLK": "United Kingdom",
	"GIB": "United Kingdom",
	"BMU": "United Kingdom",
	"CYM": "United Kingdom",
	"KYM": "United Kingdom",
	"TCA": "United Kingdom",
	"VGB": "United Kingdom",
	"AIA": "United Kingdom",
	"MSR": "United Kingdom",
	"PCN": "United Kingdom",
	"SHN": "United Kingdom",
	"SGS": "United Kingdom",

	// Denmark
	"GRL": "Denmark",
	"FRO": "Denmark",
	"AXA": "Denmark",

	// Netherlands
	"ABW": "Netherlands",
	"CUW": "Netherlands",
	"SXM": "Netherlands",
	"BES": "Netherlands",

	// France
	"MYT": "France",
	"REU": "France",
	"GUF": "France",
	"GLP": "France",
	"MTQ": "France",
	"BLM": "France",
	"MAF": "France",
	"SPM": "France",
	"PYF": "France",
	"WLF": "France",
	"NCL": "France",
	"ATF": "France",

	// United States, including the Compact of Free Association states
	"VIR": "United States",
	"PRI": "United States",
	"GUM": "United States",
	"ASM": "United States",
	"MNP": "United States",
	"UMI": "United States",
	"FSM": "United States",
	"MHL": "United States",
	"PLW": "United States",

	// China
	"HKG": "China",
	"MAC": "China",
	"TWN": "China",

	// Australia
	"HMD": "Australia",
	"CXR": "Australia",
	"CCK": "Australia",
	"NFK": "Australia",

	// New Zealand
	"COK": "New Zealand",
	"NIU": "New Zealand",
	"TKL": "New Zealand",

	// Norway
	"SJM": "Norway",
	"BVT": "Norway",

	"ALA": "Finland",

	// Disputed
	"ESH": "Morocco",
	"PSE": "Palestine",
}
