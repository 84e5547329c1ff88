package schema

// Canonical customer fields source columns may be mapped to.
const (
	FieldFullName         = "fullName"
	FieldPhone            = "phone"
	FieldEmail            = "email"
	FieldNationalID       = "nationalId"
	FieldAddress          = "address"
	FieldEmploymentStatus = "employmentStatus"
	FieldMonthlyIncome    = "monthlyIncome"
	FieldEmployer         = "employer"
	FieldJobTitle         = "jobTitle"
)

// Canonical loan fields.
const (
	FieldCustomerID         = "customerId"
	FieldCustomerName       = "customerName"
	FieldAmount             = "amount"
	FieldInterestRate       = "interestRate"
	FieldDurationMonths     = "durationMonths"
	FieldLoanType           = "loanType"
	FieldDisbursementDate   = "disbursementDate"
	FieldCollateralIncluded = "collateralIncluded"
)

var CustomerFields = map[string]bool{
	FieldFullName:         true,
	FieldPhone:            true,
	FieldEmail:            true,
	FieldNationalID:       true,
	FieldAddress:          true,
	FieldEmploymentStatus: true,
	FieldMonthlyIncome:    true,
	FieldEmployer:         true,
	FieldJobTitle:         true,
}

var LoanFields = map[string]bool{
	FieldCustomerID:         true,
	FieldCustomerName:       true,
	FieldAmount:             true,
	FieldInterestRate:       true,
	FieldDurationMonths:     true,
	FieldLoanType:           true,
	FieldDisbursementDate:   true,
	FieldCollateralIncluded: true,
}

// IsCanonical reports whether field belongs to the closed allowlist.
// Mappings to anything else must never reach the store.
func IsCanonical(field string) bool {
	return CustomerFields[field] || LoanFields[field]
}

// Aliases lists common raw header spellings per canonical field. The
// validator falls back to these so a row can still be checked when the
// mapper missed a header.
var Aliases = map[string][]string{
	FieldFullName:       {"full name", "fullname", "name", "customer name", "borrower name", "client name"},
	FieldPhone:          {"phone", "phone number", "mobile", "mobile number", "contact", "contact number", "msisdn"},
	FieldNationalID:     {"nrc", "nrc number", "national id", "id number", "national id number"},
	FieldEmail:          {"email", "email address", "e-mail"},
	FieldAmount:         {"amount", "loan amount", "principal", "principal amount"},
	FieldDurationMonths: {"duration", "duration months", "term", "term months", "tenure"},
	FieldInterestRate:   {"interest rate", "interest", "rate"},
	FieldCustomerName:   {"customer name", "borrower name", "client name"},
}
