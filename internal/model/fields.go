package model

// Type-specific extraction schemas. One per non-unknown document type; the
// analyzer asks the model to fill exactly these fields, leaving the rest
// empty. Field names double as the schema rendering shown in the prompt.

// MedicalReportFields holds data extracted from a medical report or
// certificate.
type MedicalReportFields struct {
	PatientName       string `json:"patient_name"`
	HospitalOrClinic  string `json:"hospital_or_clinic"`
	AdmissionDate     string `json:"admission_date"`
	DischargeDate     string `json:"discharge_date"`
	ReportIssuingDate string `json:"report_issuing_date"`
	Diagnosis         string `json:"diagnosis"`
	Treatment         string `json:"treatment"`
	DoctorName        string `json:"doctor_name"`
}

// PoliceReportFields holds data extracted from a police report.
type PoliceReportFields struct {
	ClaimantName          string `json:"claimant_name"`
	PoliceInstitution     string `json:"police_institution"`
	ReportDate            string `json:"report_date"`
	ReportTime            string `json:"report_time"`
	IncidentDate          string `json:"incident_date"`
	IncidentTime          string `json:"incident_time"`
	ReportNumber          string `json:"report_number"`
	ItemsOrDamageReported string `json:"items_or_damage_reported"`
	OfficerNameOrBadge    string `json:"officer_name_or_badge"`
}

// JurySummonsFields holds data extracted from a jury summons letter.
type JurySummonsFields struct {
	RecipientName  string `json:"recipient_name"`
	CourtName      string `json:"court_name"`
	SummonsDate    string `json:"summons_date"`
	AppearanceDate string `json:"appearance_date"`
	CaseNumber     string `json:"case_number"`
}

// JustificationForDelayFields holds data extracted from documentation
// explaining the cause of a delay.
type JustificationForDelayFields struct {
	PersonName         string `json:"person_name"`
	ReasonForDelay     string `json:"reason_for_delay"`
	DateOfIncident     string `json:"date_of_incident"`
	SupportingEvidence string `json:"supporting_evidence"`
}

// PersonalEmergencyFields holds data extracted from other official documents
// describing a personal emergency.
type PersonalEmergencyFields struct {
	PersonName        string `json:"person_name"`
	EmergencyType     string `json:"emergency_type"`
	IncidentDate      string `json:"incident_date"`
	IncidentTime      string `json:"incident_time"`
	Location          string `json:"location"`
	SupportingDetails string `json:"supporting_details"`
}

// ProofOfBookingFields holds data extracted from reservations, tickets and
// similar booking confirmations.
type ProofOfBookingFields struct {
	GuestName        string `json:"guest_name"`
	BookingReference string `json:"booking_reference"`
	BookingPlatform  string `json:"booking_platform"`
	Price            string `json:"price"`
	Location         string `json:"location"`
	CheckInDate      string `json:"check_in_date"`
	CheckOutDate     string `json:"check_out_date"`
	NumberGuests     string `json:"number_guests"`
	BookedOn         string `json:"booked_on"`
}
