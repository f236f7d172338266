package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PlaceholderGrid generates SYNTHETIC coordinates for sites whose real
// position is unknown. Row i is placed at Base + i*Step on both axes and its
// far end is offset by FarEndOffset. Never treat its output as geolocation.
type PlaceholderGrid struct {
	BaseLatitude  float64
	BaseLongitude float64
	Step          float64
	FarEndOffset  float64
}

// DefaultPlaceholderGrid starts at (-6.0, 113.0) with 0.01° between rows.
var DefaultPlaceholderGrid = PlaceholderGrid{
	BaseLatitude:  -6.0,
	BaseLongitude: 113.0,
	Step:          0.01,
	FarEndOffset:  0.001,
}

// At returns the placeholder near-end and far-end positions for row index.
// The offset is rounded before it is added so that no platform fuses the
// multiply-add and the values stay identical everywhere.
func (g PlaceholderGrid) At(index int) (ne, fe Coordinates) {
	offset := float64(float64(index) * g.Step)
	ne = Coordinates{
		Latitude:  g.BaseLatitude + offset,
		Longitude: g.BaseLongitude + offset,
	}
	fe = Coordinates{
		Latitude:  ne.Latitude + g.FarEndOffset,
		Longitude: ne.Longitude + g.FarEndOffset,
	}
	return ne, fe
}

// Transformer derives canonical site records from input rows.
type Transformer struct {
	Grid PlaceholderGrid

	// NewID returns the identifier of each record. Defaults to uuid.New.
	NewID func() uuid.UUID
}

// NewTransformer creates a transformer that places sites on grid and assigns
// random v4 UUIDs.
func NewTransformer(grid PlaceholderGrid) *Transformer {
	return &Transformer{
		Grid:  grid,
		NewID: uuid.New,
	}
}

// Canonicalize derives the site record for row at the given zero-based index.
// It performs no I/O; apart from the ID the result depends only on its inputs.
func (t *Transformer) Canonicalize(row InputRow, index int) SiteRecord {
	neID, feID := splitPair(row.SiteIDs,
		fmt.Sprintf("SITE-%04d-NE", index),
		fmt.Sprintf("SITE-%04d-FE", index))
	neName, feName := splitPair(row.SiteNames,
		fmt.Sprintf("Site %d NE", index),
		fmt.Sprintf("Site %d FE", index))

	region := orDefault(row.Region, DefaultRegion)
	sow := orDefault(row.SOW, DefaultSOWCategory)
	activity := orDefault(row.ActivityFlow, DefaultActivityFlow)

	nePos, fePos := t.Grid.At(index)

	newID := t.NewID
	if newID == nil {
		newID = uuid.New
	}

	return SiteRecord{
		Index: index,
		ID:    newID(),
		NearEnd: Endpoint{
			SiteID:   neID,
			Name:     neName,
			Position: nePos,
		},
		FarEnd: Endpoint{
			SiteID:   feID,
			Name:     feName,
			Position: fePos,
		},
		Region:               region,
		City:                 region,
		SOWCategory:          sow,
		ActivityFlow:         activity,
		ATPType:              ClassifyATP(sow),
		ATPRequired:          true,
		Scope:                ScopeMW,
		Status:               StatusActive,
		WorkflowStage:        StageRegistered,
		SyntheticCoordinates: true,
	}
}

// ClassifyATP infers the ATP type from the SOW category text.
// "Software" wins over "Hardware"/"Upgrade"; anything else is BOTH.
// Matching is case-sensitive.
func ClassifyATP(sow string) ATPType {
	switch {
	case strings.Contains(sow, "Software"):
		return ATPSoftware
	case strings.Contains(sow, "Hardware"), strings.Contains(sow, "Upgrade"):
		return ATPHardware
	default:
		return ATPBoth
	}
}

// splitPair splits "near,far" and substitutes the fallbacks for missing or
// blank tokens. Tokens after the second are ignored.
func splitPair(field, neFallback, feFallback string) (ne, fe string) {
	parts := strings.Split(field, ",")

	ne, fe = neFallback, feFallback
	if len(parts) > 0 {
		if v := strings.TrimSpace(parts[0]); v != "" {
			ne = v
		}
	}
	if len(parts) > 1 {
		if v := strings.TrimSpace(parts[1]); v != "" {
			fe = v
		}
	}
	return ne, fe
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
