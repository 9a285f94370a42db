package marketplace

import "time"

// CompanyProfile is the payload for POST /api/company. Fundraising terms
// travel with the company record.
type CompanyProfile struct {
	Name              string  `json:"name"`
	IncorporationDate string  `json:"incorporation_date"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country,omitempty"`
	Website           string  `json:"website,omitempty"`
	Description       string  `json:"description,omitempty"`
	RaiseAmount       float64 `json:"raise_amount"`
	EquityOfferedPct  float64 `json:"equity_offered_pct"`
	PreMoneyValuation float64 `json:"pre_money_valuation,omitempty"`
	Instrument        string  `json:"instrument"`
}

// Company is the backend's company record
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// KYCSubmission is the payload for POST /api/kyc/verify
type KYCSubmission struct {
	CompanyID        string `json:"company_id"`
	LegalName        string `json:"legal_name"`
	DateOfBirth      string `json:"date_of_birth"`
	Nationality      string `json:"nationality"`
	IDDocumentType   string `json:"id_document_type"`
	IDDocumentNumber string `json:"id_document_number"`
}

// FinancialLink is the payload for POST /api/financials/link
type FinancialLink struct {
	CompanyID       string  `json:"company_id"`
	Provider        string  `json:"provider"`
	AccountRef      string  `json:"account_ref,omitempty"`
	InstitutionName string  `json:"institution_name,omitempty"`
	AnnualRevenue   float64 `json:"annual_revenue,omitempty"`
}

// FileUpload is one document forwarded opaquely to POST /api/files
type FileUpload struct {
	CompanyID   string
	Name        string
	ContentType string
	Content     []byte
}

// FileRecord is the backend's record of an uploaded document
type FileRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Score is the backend-computed investability score
type Score struct {
	Score     float64   `json:"score"`
	Band      string    `json:"band"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Notification is one in-app notification
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
