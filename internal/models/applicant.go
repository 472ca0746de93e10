package models

// CustomerType distinguishes private from business applicants. Business
// applicants must supply a company name.
type CustomerType string

const (
	CustomerTypePrivate  CustomerType = "private"
	CustomerTypeBusiness CustomerType = "business"
)

// Applicant holds the identity and contact data collected on the
// applicant step. Phone is optional.
type Applicant struct {
	CustomerType CustomerType `json:"customerType"`
	CompanyName  string       `json:"companyName,omitempty"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Street       string       `json:"street"`
	HouseNumber  string       `json:"houseNumber"`
	ZipCode      string       `json:"zipCode"`
	City         string       `json:"city"`
	Phone        string       `json:"phone,omitempty"`
	Email        string       `json:"email"`
}
