package nhs

import "sort"

// OrganizationTypes maps NHS organization-type codes to human-readable
// descriptions. The table is fixed at process start and never mutated.
var OrganizationTypes = map[string]string{
	"CCG": "Clinical Commissioning Group",
	"CLI": "Clinic",
	"DEN": "Dental Practice",
	"GPB": "GP Branch Surgery",
	"GPP": "GP Practice",
	"HOS": "Hospital",
	"OPT": "Optician",
	"PHA": "Pharmacy",
	"PRO": "Provider Organisation",
	"WAL": "Walk-in Centre",
	"CAR": "Care Home",
	"MHT": "Mental Health Trust",
	"AMB": "Ambulance Trust",
	"ACU": "Acute Trust",
	"CHC": "Community Health Centre",
	"ICB": "Integrated Care Board",
	"PCN": "Primary Care Network",
	"SUR": "Surgical Centre",
	"URG": "Urgent Treatment Centre",
	"IMC": "Independent Medical Centre",
	"LAB": "Laboratory",
	"RAD": "Radiology Centre",
	"BLD": "Blood Donation Centre",
	"SCR": "Screening Service",
}

// OrganizationTypeCodes returns the recognized codes in sorted order.
func OrganizationTypeCodes() []string {
	codes := make([]string, 0, len(OrganizationTypes))
	for code := range OrganizationTypes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
