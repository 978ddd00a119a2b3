package templates

func floatPtr(f float64) *float64 { return &f }

// schemas holds the per-template field layouts for implemented templates.
// Coordinates are PDF points on US Letter pages (612x792), origin lower-left.
var schemas = map[string]FieldSchema{
	"CA_RPA": {
		TemplateCode: "CA_RPA",
		PageCount:    10,
		Fields: []FieldDescriptor{
			{
				Name:      "buyerName",
				Type:      FieldText,
				Label:     "Buyer Name",
				Required:  true,
				Section:   "parties",
				Validation: &Validation{MinLength: 1, MaxLength: 120},
				Placement: &Placement{Page: 1, X: 140, Y: 700},
			},
			{
				Name:      "sellerName",
				Type:      FieldText,
				Label:     "Seller Name",
				Required:  true,
				Section:   "parties",
				Validation: &Validation{MinLength: 1, MaxLength: 120},
				Placement: &Placement{Page: 1, X: 140, Y: 676},
			},
			{
				Name:      "propertyAddress",
				Type:      FieldText,
				Label:     "Property Address",
				Required:  true,
				Section:   "property",
				Validation: &Validation{MinLength: 1, MaxLength: 200},
				Placement: &Placement{Page: 1, X: 140, Y: 652},
			},
			{
				Name:      "purchasePrice",
				Type:      FieldNumber,
				Label:     "Purchase Price",
				Required:  true,
				Section:   "terms",
				Validation: &Validation{Min: floatPtr(1)},
				Placement: &Placement{Page: 1, X: 360, Y: 628},
			},
			{
				Name:      "closeOfEscrowDays",
				Type:      FieldNumber,
				Label:     "Close of Escrow (days)",
				Required:  false,
				Section:   "terms",
				Default:   float64(30),
				Validation: &Validation{Min: floatPtr(1), Max: floatPtr(365)},
				Placement: &Placement{Page: 1, X: 360, Y: 604},
			},
			{
				Name:     "financingType",
				Type:     FieldSelect,
				Label:    "Financing",
				Required: true,
				Section:  "financing",
				Options:  []string{"cash", "conventional", "fha", "va"},
				Placement: &Placement{Page: 2, X: 140, Y: 700},
			},
			{
				Name:      "loanAmount",
				Type:      FieldNumber,
				Label:     "Loan Amount",
				Required:  true,
				Section:   "financing",
				Validation: &Validation{Min: floatPtr(1)},
				DependsOn: &Condition{Field: "financingType", Op: OpNotEquals, Value: "cash"},
				Placement: &Placement{Page: 2, X: 360, Y: 700},
			},
			{
				Name:      "earnestMoneyDeposit",
				Type:      FieldNumber,
				Label:     "Initial Deposit",
				Required:  true,
				Section:   "terms",
				Validation: &Validation{Min: floatPtr(0)},
				Placement: &Placement{Page: 2, X: 360, Y: 676},
			},
			{
				Name:      "inspectionContingency",
				Type:      FieldBoolean,
				Label:     "Inspection Contingency",
				Required:  false,
				Section:   "contingencies",
				Default:   true,
				Placement: &Placement{Page: 3, X: 96, Y: 700},
			},
			{
				Name:      "inspectionContingencyDays",
				Type:      FieldNumber,
				Label:     "Inspection Contingency (days)",
				Required:  false,
				Section:   "contingencies",
				Default:   float64(17),
				Validation: &Validation{Min: floatPtr(1), Max: floatPtr(60)},
				DependsOn: &Condition{Field: "inspectionContingency", Op: OpEquals, Value: true},
				Placement: &Placement{Page: 3, X: 360, Y: 700},
			},
			{
				Name:      "offerExpirationDate",
				Type:      FieldDate,
				Label:     "Offer Expiration Date",
				Required:  false,
				Section:   "terms",
				Placement: &Placement{Page: 1, X: 360, Y: 580},
			},
		},
		Signatures: []SignatureField{
			{ID: "buyer_signature", Page: 10, X: 90, Y: 180, Width: 200, Height: 36, Role: "buyer", Type: "signature", Required: true, Group: "execution"},
			{ID: "seller_signature", Page: 10, X: 90, Y: 120, Width: 200, Height: 36, Role: "seller", Type: "signature", Required: true, Group: "execution"},
			{ID: "buyer_initials_p1", Page: 1, X: 500, Y: 60, Width: 48, Height: 24, Role: "buyer", Type: "initials", Required: false, Group: "initials"},
			{ID: "seller_initials_p1", Page: 1, X: 552, Y: 60, Width: 48, Height: 24, Role: "seller", Type: "initials", Required: false, Group: "initials"},
		},
	},
	"AD": {
		TemplateCode: "AD",
		PageCount:    2,
		AllowUnknown: true,
		Fields: []FieldDescriptor{
			{
				Name:      "buyerName",
				Type:      FieldText,
				Label:     "Buyer Name",
				Required:  true,
				Section:   "parties",
				Placement: &Placement{Page: 1, X: 140, Y: 700},
			},
			{
				Name:      "agentName",
				Type:      FieldText,
				Label:     "Agent Name",
				Required:  true,
				Section:   "parties",
				Placement: &Placement{Page: 1, X: 140, Y: 676},
			},
			{
				Name:     "representing",
				Type:     FieldSelect,
				Label:    "Agent Represents",
				Required: true,
				Section:  "agency",
				Options:  []string{"buyer", "seller", "both"},
				Placement: &Placement{Page: 1, X: 140, Y: 652},
			},
		},
		Signatures: []SignatureField{
			{ID: "buyer_signature", Page: 2, X: 90, Y: 160, Width: 200, Height: 36, Role: "buyer", Type: "signature", Required: true},
			{ID: "agent_signature", Page: 2, X: 90, Y: 100, Width: 200, Height: 36, Role: "agent", Type: "signature", Required: true},
		},
	},
	"TDS": {
		TemplateCode: "TDS",
		PageCount:    3,
		Fields: []FieldDescriptor{
			{
				Name:      "sellerName",
				Type:      FieldText,
				Label:     "Seller Name",
				Required:  true,
				Section:   "parties",
				Placement: &Placement{Page: 1, X: 140, Y: 700},
			},
			{
				Name:      "propertyAddress",
				Type:      FieldText,
				Label:     "Property Address",
				Required:  true,
				Section:   "property",
				Placement: &Placement{Page: 1, X: 140, Y: 676},
			},
			{
				Name:      "occupiedBySeller",
				Type:      FieldBoolean,
				Label:     "Occupied by Seller",
				Required:  true,
				Section:   "occupancy",
				Placement: &Placement{Page: 1, X: 96, Y: 640},
			},
			{
				Name:      "knownDefects",
				Type:      FieldText,
				Label:     "Known Defects",
				Required:  false,
				Section:   "disclosures",
				Validation: &Validation{MaxLength: 1000},
				Placement: &Placement{Page: 2, X: 90, Y: 700},
			},
		},
		Signatures: []SignatureField{
			{ID: "seller_signature", Page: 3, X: 90, Y: 160, Width: 200, Height: 36, Role: "seller", Type: "signature", Required: true},
			{ID: "buyer_signature", Page: 3, X: 90, Y: 100, Width: 200, Height: 36, Role: "buyer", Type: "signature", Required: false},
		},
	},
}
