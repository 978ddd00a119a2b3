package templates

// catalog is the static template catalog, loaded once at process start and
// never mutated afterwards. SortKey drives default ordering; CategoryNumber
// mirrors the numbering printed on the forms index.
var catalog = []TemplateDefinition{
	{
		Code:           "CA_RPA",
		Name:           "California Residential Purchase Agreement",
		Category:       "purchase",
		CategoryNumber: 1,
		SourceFile:     "ca_rpa.pdf",
		SortKey:        10,
		PageCount:      10,
		CommonlyUsed:   true,
		Implemented:    true,
	},
	{
		Code:           "AD",
		Name:           "Disclosure Regarding Real Estate Agency Relationship",
		Category:       "disclosure",
		CategoryNumber: 2,
		SourceFile:     "ad.pdf",
		SortKey:        20,
		PageCount:      2,
		CommonlyUsed:   true,
		Implemented:    true,
	},
	{
		Code:           "TDS",
		Name:           "Real Estate Transfer Disclosure Statement",
		Category:       "disclosure",
		CategoryNumber: 2,
		SourceFile:     "tds.pdf",
		SortKey:        30,
		PageCount:      3,
		CommonlyUsed:   true,
		Implemented:    true,
	},
	{
		Code:           "SPQ",
		Name:           "Seller Property Questionnaire",
		Category:       "disclosure",
		CategoryNumber: 2,
		SourceFile:     "spq.pdf",
		SortKey:        40,
		PageCount:      4,
		CommonlyUsed:   true,
		Implemented:    false,
	},
	{
		Code:           "BIA",
		Name:           "Buyer's Investigation Advisory",
		Category:       "advisory",
		CategoryNumber: 3,
		SourceFile:     "bia.pdf",
		SortKey:        50,
		PageCount:      2,
		CommonlyUsed:   false,
		Implemented:    false,
	},
	{
		Code:           "AVID",
		Name:           "Agent Visual Inspection Disclosure",
		Category:       "disclosure",
		CategoryNumber: 2,
		SourceFile:     "avid.pdf",
		SortKey:        60,
		PageCount:      3,
		CommonlyUsed:   false,
		Implemented:    false,
	},
	{
		Code:           "SBSA",
		Name:           "Statewide Buyer and Seller Advisory",
		Category:       "advisory",
		CategoryNumber: 3,
		SourceFile:     "sbsa.pdf",
		SortKey:        70,
		PageCount:      14,
		CommonlyUsed:   false,
		Implemented:    false,
	},
	{
		Code:           "WHSD",
		Name:           "Water Heater and Smoke Detector Statement of Compliance",
		Category:       "compliance",
		CategoryNumber: 4,
		SourceFile:     "whsd.pdf",
		SortKey:        80,
		PageCount:      1,
		CommonlyUsed:   false,
		Implemented:    false,
	},
}
