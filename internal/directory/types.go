package directory

// Resource is the subset of a FHIR R4 Patient resource this service reads.
type Resource struct {
	ResourceType  string          `json:"resourceType"`
	ID            string          `json:"id"`
	Name          []HumanName     `json:"name,omitempty"`
	Gender        string          `json:"gender,omitempty"`
	BirthDate     string          `json:"birthDate,omitempty"`
	Telecom       []ContactPoint  `json:"telecom,omitempty"`
	Address       []Address       `json:"address,omitempty"`
	Communication []Communication `json:"communication,omitempty"`
}

// HumanName is a FHIR name element.
type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// ContactPoint is a FHIR telecom element.
type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

// Address is a FHIR address element.
type Address struct {
	Use        string   `json:"use,omitempty"`
	Type       string   `json:"type,omitempty"`
	Text       string   `json:"text,omitempty"`
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
}

// Communication is a FHIR patient communication element.
type Communication struct {
	Language  CodeableConcept `json:"language"`
	Preferred bool            `json:"preferred,omitempty"`
}

// CodeableConcept is a FHIR codeable concept.
type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Coding is a single code within a codeable concept.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// Bundle is a FHIR search result bundle.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Total        int           `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// BundleEntry wraps a resource inside a bundle.
type BundleEntry struct {
	Resource Resource `json:"resource"`
}

// Demographics is the flattened patient record the rest of the service uses.
type Demographics struct {
	FHIRID      string `json:"fhir_id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	BirthDate   string `json:"birthdate"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	Language    string `json:"language"`
}
