package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/sitereg/internal/core"
)

// BulkUploadColumns is the header the front-end site bulk upload expects, in
// order.
var BulkUploadColumns = []string{
	"Customer Site ID",
	"Customer Site Name",
	"Customer Site ID (FE)",
	"Customer Site Name (FE)",
	"NE Latitude",
	"NE Longitude",
	"FE Latitude",
	"FE Longitude",
	"Region",
	"Coverage Area",
	"City",
	"Scope",
	"ATP Required",
	"ATP Type",
	"Activity Flow",
	"SOW Category",
	"Project Code",
	"Frequency",
	"Capacity",
	"Antenna Size",
	"Equipment Type",
	"Status",
	"Scope Description",
}

// Radio defaults filled in for every bulk-upload row. The sheet carries no
// radio data; the front-end requires these columns to be non-empty.
const (
	DefaultFrequency     = "13GHz"
	DefaultCapacity      = "500Mbps"
	DefaultAntennaSize   = "0.6m"
	DefaultEquipmentType = "Nokia AirScale"
	DefaultProjectYear   = 2025
)

// ATPPolicy selects the ATP Type written to the bulk-upload CSV.
type ATPPolicy string

const (
	// ATPPolicyBoth writes BOTH on every row.
	ATPPolicyBoth ATPPolicy = "both"
	// ATPPolicyInferred writes the type inferred from the SOW category, the
	// same value the SQL script carries.
	ATPPolicyInferred ATPPolicy = "inferred"
)

// ParseATPPolicy returns the policy named by s, ignoring case.
func ParseATPPolicy(s string) (ATPPolicy, error) {
	switch p := ATPPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case ATPPolicyBoth, ATPPolicyInferred:
		return p, nil
	default:
		return "", fmt.Errorf("unknown ATP policy %q (want %q or %q)", s, ATPPolicyBoth, ATPPolicyInferred)
	}
}

// BulkCSVOptions controls the fabricated bulk-upload fields.
type BulkCSVOptions struct {
	ATPPolicy   ATPPolicy // empty means ATPPolicyBoth
	ProjectYear int       // zero means DefaultProjectYear
}

// Policy returns the ATP policy in effect, resolving the zero value.
func (o BulkCSVOptions) Policy() ATPPolicy {
	if o.ATPPolicy == "" {
		return ATPPolicyBoth
	}
	return o.ATPPolicy
}

func (o BulkCSVOptions) atpType(rec core.SiteRecord) core.ATPType {
	if o.Policy() == ATPPolicyInferred {
		return rec.ATPType
	}
	return core.ATPBoth
}

func (o BulkCSVOptions) projectYear() int {
	if o.ProjectYear <= 0 {
		return DefaultProjectYear
	}
	return o.ProjectYear
}

// BulkUploadRecord is one row of the bulk-upload CSV.
type BulkUploadRecord struct {
	NESiteID         string
	NESiteName       string
	FESiteID         string
	FESiteName       string
	NELatitude       float64
	NELongitude      float64
	FELatitude       float64
	FELongitude      float64
	Region           string
	CoverageArea     string
	City             string
	Scope            string
	ATPRequired      bool
	ATPType          core.ATPType
	ActivityFlow     string
	SOWCategory      string
	ProjectCode      string
	Frequency        string
	Capacity         string
	AntennaSize      string
	EquipmentType    string
	Status           string
	ScopeDescription string
}

// BuildBulkUploadRecord derives the bulk-upload row for rec.
func BuildBulkUploadRecord(rec core.SiteRecord, opts BulkCSVOptions) BulkUploadRecord {
	return BulkUploadRecord{
		NESiteID:         rec.NearEnd.SiteID,
		NESiteName:       rec.NearEnd.Name,
		FESiteID:         rec.FarEnd.SiteID,
		FESiteName:       rec.FarEnd.Name,
		NELatitude:       rec.NearEnd.Position.Latitude,
		NELongitude:      rec.NearEnd.Position.Longitude,
		FELatitude:       rec.FarEnd.Position.Latitude,
		FELongitude:      rec.FarEnd.Position.Longitude,
		Region:           rec.Region,
		CoverageArea:     rec.Region + " District",
		City:             rec.City,
		Scope:            rec.Scope,
		ATPRequired:      rec.ATPRequired,
		ATPType:          opts.atpType(rec),
		ActivityFlow:     rec.ActivityFlow,
		SOWCategory:      rec.SOWCategory,
		ProjectCode:      fmt.Sprintf("MWU-%d-%d", opts.projectYear(), rec.Ordinal()),
		Frequency:        DefaultFrequency,
		Capacity:         DefaultCapacity,
		AntennaSize:      DefaultAntennaSize,
		EquipmentType:    DefaultEquipmentType,
		Status:           rec.Status,
		ScopeDescription: rec.SOWCategory + " (MW Upgrade Activity)",
	}
}

// Values returns the row in BulkUploadColumns order.
func (r BulkUploadRecord) Values() []string {
	return []string{
		r.NESiteID,
		r.NESiteName,
		r.FESiteID,
		r.FESiteName,
		formatFloat(r.NELatitude),
		formatFloat(r.NELongitude),
		formatFloat(r.FELatitude),
		formatFloat(r.FELongitude),
		r.Region,
		r.CoverageArea,
		r.City,
		r.Scope,
		strconv.FormatBool(r.ATPRequired),
		string(r.ATPType),
		r.ActivityFlow,
		r.SOWCategory,
		r.ProjectCode,
		r.Frequency,
		r.Capacity,
		r.AntennaSize,
		r.EquipmentType,
		r.Status,
		r.ScopeDescription,
	}
}

// WriteBulkCSV writes the header row and one row per record to w.
// The output depends only on records and opts.
func WriteBulkCSV(w io.Writer, records []core.SiteRecord, opts BulkCSVOptions) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(BulkUploadColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		if err := csvWriter.Write(BuildBulkUploadRecord(rec, opts).Values()); err != nil {
			return fmt.Errorf("write row %d: %w", rec.Ordinal(), err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// WriteBulkCSVFile creates or truncates path and writes the bulk-upload CSV.
func WriteBulkCSVFile(path string, records []core.SiteRecord, opts BulkCSVOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", core.ErrWriteOutput, path, err)
	}

	if err := WriteBulkCSV(f, records, opts); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", core.ErrWriteOutput, path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", core.ErrWriteOutput, path, err)
	}
	return nil
}

// WriteBulkTemplate writes a header-only bulk-upload CSV.
func WriteBulkTemplate(w io.Writer) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(BulkUploadColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
