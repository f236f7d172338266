package core

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

const coordTolerance = 1e-9

func fixedID(s string) func() uuid.UUID {
	id := uuid.MustParse(s)
	return func() uuid.UUID { return id }
}

func TestCanonicalize_SplitsNearAndFarEnd(t *testing.T) {
	tr := NewTransformer(DefaultPlaceholderGrid)
	rec := tr.Canonicalize(InputRow{
		SiteIDs:   "A-NE-01,A-FE-01",
		SiteNames: "Alpha NE,Alpha FE",
		Region:    "Central Java",
		SOW:       "Hardware Replacement",
	}, 0)

	if rec.NearEnd.SiteID != "A-NE-01" || rec.FarEnd.SiteID != "A-FE-01" {
		t.Errorf("site ids = %q / %q, want A-NE-01 / A-FE-01", rec.NearEnd.SiteID, rec.FarEnd.SiteID)
	}
	if rec.NearEnd.Name != "Alpha NE" || rec.FarEnd.Name != "Alpha FE" {
		t.Errorf("names = %q / %q, want Alpha NE / Alpha FE", rec.NearEnd.Name, rec.FarEnd.Name)
	}
	if rec.Region != "Central Java" || rec.City != "Central Java" {
		t.Errorf("region/city = %q / %q, want Central Java", rec.Region, rec.City)
	}
}

func TestCanonicalize_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		row        InputRow
		index      int
		wantNEID   string
		wantFEID   string
		wantNEName string
		wantFEName string
	}{
		{
			name:       "single id without comma",
			row:        InputRow{SiteIDs: "JKT-001", SiteNames: "Kemang"},
			index:      3,
			wantNEID:   "JKT-001",
			wantFEID:   "SITE-0003-FE",
			wantNEName: "Kemang",
			wantFEName: "Site 3 FE",
		},
		{
			name:       "empty fields",
			row:        InputRow{},
			index:      12,
			wantNEID:   "SITE-0012-NE",
			wantFEID:   "SITE-0012-FE",
			wantNEName: "Site 12 NE",
			wantFEName: "Site 12 FE",
		},
		{
			name:       "blank far-end token",
			row:        InputRow{SiteIDs: "JKT-001, ", SiteNames: " ,Far"},
			index:      7,
			wantNEID:   "JKT-001",
			wantFEID:   "SITE-0007-FE",
			wantNEName: "Site 7 NE",
			wantFEName: "Far",
		},
		{
			name:       "extra tokens ignored and trimmed",
			row:        InputRow{SiteIDs: " A , B , C ", SiteNames: "x,y,z"},
			index:      0,
			wantNEID:   "A",
			wantFEID:   "B",
			wantNEName: "x",
			wantFEName: "y",
		},
		{
			name:       "index wider than padding",
			row:        InputRow{},
			index:      12345,
			wantNEID:   "SITE-12345-NE",
			wantFEID:   "SITE-12345-FE",
			wantNEName: "Site 12345 NE",
			wantFEName: "Site 12345 FE",
		},
	}

	tr := NewTransformer(DefaultPlaceholderGrid)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tr.Canonicalize(tt.row, tt.index)
			if rec.NearEnd.SiteID != tt.wantNEID {
				t.Errorf("NE id = %q, want %q", rec.NearEnd.SiteID, tt.wantNEID)
			}
			if rec.FarEnd.SiteID != tt.wantFEID {
				t.Errorf("FE id = %q, want %q", rec.FarEnd.SiteID, tt.wantFEID)
			}
			if rec.NearEnd.Name != tt.wantNEName {
				t.Errorf("NE name = %q, want %q", rec.NearEnd.Name, tt.wantNEName)
			}
			if rec.FarEnd.Name != tt.wantFEName {
				t.Errorf("FE name = %q, want %q", rec.FarEnd.Name, tt.wantFEName)
			}
		})
	}
}

func TestCanonicalize_RegionDefaults(t *testing.T) {
	tr := NewTransformer(DefaultPlaceholderGrid)

	for _, region := range []string{"", "   "} {
		rec := tr.Canonicalize(InputRow{Region: region}, 0)
		if rec.Region != "Unknown" || rec.City != "Unknown" {
			t.Errorf("region %q: region/city = %q / %q, want Unknown", region, rec.Region, rec.City)
		}
	}
}

func TestCanonicalize_SOWAndActivityDefaults(t *testing.T) {
	tr := NewTransformer(DefaultPlaceholderGrid)
	rec := tr.Canonicalize(InputRow{}, 0)

	if rec.SOWCategory != "MW Upgrade" {
		t.Errorf("SOWCategory = %q, want %q", rec.SOWCategory, "MW Upgrade")
	}
	if rec.ActivityFlow != "MW Upgrade" {
		t.Errorf("ActivityFlow = %q, want %q", rec.ActivityFlow, "MW Upgrade")
	}
	// The defaulted SOW contains "Upgrade".
	if rec.ATPType != ATPHardware {
		t.Errorf("ATPType = %q, want %q", rec.ATPType, ATPHardware)
	}
}

func TestCanonicalize_FixedFields(t *testing.T) {
	tr := &Transformer{Grid: DefaultPlaceholderGrid, NewID: fixedID("3f2504e0-4f89-41d3-9a0c-0305e82c3301")}
	rec := tr.Canonicalize(InputRow{SiteIDs: "A"}, 4)

	if rec.ID.String() != "3f2504e0-4f89-41d3-9a0c-0305e82c3301" {
		t.Errorf("ID = %s, want injected id", rec.ID)
	}
	if rec.Index != 4 || rec.Ordinal() != 5 {
		t.Errorf("Index/Ordinal = %d/%d, want 4/5", rec.Index, rec.Ordinal())
	}
	if rec.Scope != "MW" || rec.Status != "ACTIVE" || rec.WorkflowStage != "REGISTERED" {
		t.Errorf("fixed fields = %q %q %q", rec.Scope, rec.Status, rec.WorkflowStage)
	}
	if !rec.ATPRequired {
		t.Error("ATPRequired = false, want true")
	}
	if !rec.SyntheticCoordinates {
		t.Error("SyntheticCoordinates = false, want true")
	}
}

func TestCanonicalize_FreshIDs(t *testing.T) {
	tr := NewTransformer(DefaultPlaceholderGrid)
	row := InputRow{SiteIDs: "A,B"}

	a := tr.Canonicalize(row, 0)
	b := tr.Canonicalize(row, 0)
	if a.ID == b.ID {
		t.Errorf("two records share ID %s", a.ID)
	}
	if a.ID.Version() != 4 {
		t.Errorf("ID version = %d, want 4", a.ID.Version())
	}

	zero := &Transformer{Grid: DefaultPlaceholderGrid}
	if zero.Canonicalize(row, 0).ID == uuid.Nil {
		t.Error("transformer without NewID produced nil UUID")
	}
}

func TestClassifyATP(t *testing.T) {
	tests := []struct {
		sow  string
		want ATPType
	}{
		{"Software Upgrade", ATPSoftware},
		{"Software", ATPSoftware},
		{"Hardware Replacement", ATPHardware},
		{"MW Upgrade", ATPHardware},
		{"Upgrade Hardware and Software", ATPSoftware},
		{"Relocation", ATPBoth},
		{"", ATPBoth},
		{"software upgrade", ATPBoth}, // matching is case-sensitive
		{"SW Upgrade", ATPHardware},
		{"hardware swap", ATPBoth},
	}

	for _, tt := range tests {
		t.Run(tt.sow, func(t *testing.T) {
			if got := ClassifyATP(tt.sow); got != tt.want {
				t.Errorf("ClassifyATP(%q) = %q, want %q", tt.sow, got, tt.want)
			}
		})
	}
}

func TestPlaceholderGrid_At(t *testing.T) {
	g := DefaultPlaceholderGrid

	for _, i := range []int{0, 1, 3, 57, 999} {
		ne, fe := g.At(i)

		wantLat := -6.0 + 0.01*float64(i)
		wantLng := 113.0 + 0.01*float64(i)
		if math.Abs(ne.Latitude-wantLat) > coordTolerance {
			t.Errorf("index %d: NE latitude = %v, want %v", i, ne.Latitude, wantLat)
		}
		if math.Abs(ne.Longitude-wantLng) > coordTolerance {
			t.Errorf("index %d: NE longitude = %v, want %v", i, ne.Longitude, wantLng)
		}
		if math.Abs(fe.Latitude-(ne.Latitude+0.001)) > coordTolerance {
			t.Errorf("index %d: FE latitude = %v, want NE+0.001", i, fe.Latitude)
		}
		if math.Abs(fe.Longitude-(ne.Longitude+0.001)) > coordTolerance {
			t.Errorf("index %d: FE longitude = %v, want NE+0.001", i, fe.Longitude)
		}
	}
}

func TestPlaceholderGrid_NoCollisions(t *testing.T) {
	g := DefaultPlaceholderGrid
	seen := make(map[Coordinates]int)

	for i := 0; i < 500; i++ {
		ne, fe := g.At(i)
		for _, c := range []Coordinates{ne, fe} {
			if prev, ok := seen[c]; ok {
				t.Fatalf("rows %d and %d share position %+v", prev, i, c)
			}
			seen[c] = i
		}
	}
}

func TestCanonicalize_UsesGrid(t *testing.T) {
	grid := PlaceholderGrid{BaseLatitude: 1, BaseLongitude: 2, Step: 0.5, FarEndOffset: 0.25}
	rec := NewTransformer(grid).Canonicalize(InputRow{}, 2)

	if rec.NearEnd.Position != (Coordinates{Latitude: 2, Longitude: 3}) {
		t.Errorf("NE position = %+v, want {2 3}", rec.NearEnd.Position)
	}
	if rec.FarEnd.Position != (Coordinates{Latitude: 2.25, Longitude: 3.25}) {
		t.Errorf("FE position = %+v, want {2.25 3.25}", rec.FarEnd.Position)
	}
}
