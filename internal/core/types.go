package core

import "github.com/google/uuid"

// FieldSpec describes one expected column of the input sheet.
type FieldSpec struct {
	Name     string // Column header name (matched case-insensitively)
	Required bool   // Column must exist in the header
}

// HeaderIndex maps normalised column names to their position in a row.
type HeaderIndex map[string]int

// Source column names.
const (
	ColSiteID       = "Customer Site ID"
	ColSiteName     = "Customer Site Name"
	ColRegion       = "Delivery Region"
	ColSOW          = "SOW TNP"
	ColActivityFlow = "Activity Flow Name"
)

// SourceColumns lists the columns every input sheet must provide. Their cells
// may be blank; Canonicalize substitutes a fallback.
var SourceColumns = []FieldSpec{
	{Name: ColSiteID, Required: true},
	{Name: ColSiteName, Required: true},
	{Name: ColRegion, Required: true},
	{Name: ColSOW, Required: true},
	{Name: ColActivityFlow, Required: true},
}

// InputRow is one spreadsheet record, cells already cleaned.
type InputRow struct {
	SiteIDs      string // "NE-ID,FE-ID"
	SiteNames    string // "NE name,FE name"
	Region       string
	SOW          string
	ActivityFlow string
}

// ATPType classifies which acceptance test procedure a site needs.
type ATPType string

const (
	ATPSoftware ATPType = "SOFTWARE"
	ATPHardware ATPType = "HARDWARE"
	ATPBoth     ATPType = "BOTH"
)

// Fixed values written for every registered site, and the fallbacks used
// for blank cells.
const (
	ScopeMW             = "MW"
	StatusActive        = "ACTIVE"
	StageRegistered     = "REGISTERED"
	DefaultRegion       = "Unknown"
	DefaultSOWCategory  = "MW Upgrade"
	DefaultActivityFlow = "MW Upgrade"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Endpoint is one end of a microwave link.
type Endpoint struct {
	SiteID   string
	Name     string
	Position Coordinates
}

// SiteRecord is the canonical site derived from one input row.
type SiteRecord struct {
	Index int // zero-based position among non-blank input rows
	ID    uuid.UUID

	NearEnd Endpoint
	FarEnd  Endpoint

	Region       string
	City         string
	SOWCategory  string
	ActivityFlow string

	ATPType       ATPType
	ATPRequired   bool
	Scope         string
	Status        string
	WorkflowStage string

	// SyntheticCoordinates is true when Position values come from a
	// PlaceholderGrid rather than a survey. Always true today.
	SyntheticCoordinates bool
}

// Ordinal returns the 1-based row number used in reports and project codes.
func (r SiteRecord) Ordinal() int {
	return r.Index + 1
}
