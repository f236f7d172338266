// Package export renders canonical site records into the two artefacts an
// operator hands on: a transactional SQL script for the sites table and a CSV
// for the front-end bulk upload.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/sitereg/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// GeneratedAtLayout formats the generation timestamp in the script header.
const GeneratedAtLayout = "2006-01-02 15:04:05.000000"

// InsertSiteParams holds the values of one row of the sites table.
// Invalid values are rendered as NULL.
type InsertSiteParams struct {
	ID            pgtype.UUID
	SiteID        pgtype.Text
	SiteName      pgtype.Text
	Scope         pgtype.Text
	Region        pgtype.Text
	City          pgtype.Text
	NeLatitude    pgtype.Float8
	NeLongitude   pgtype.Float8
	FeLatitude    pgtype.Float8
	FeLongitude   pgtype.Float8
	Status        pgtype.Text
	AtpRequired   pgtype.Bool
	AtpType       pgtype.Text
	WorkflowStage pgtype.Text
}

// BuildInsertParams maps a site record onto the sites table columns.
// The row is keyed by the near-end site; the far end contributes only its
// coordinates.
func BuildInsertParams(rec core.SiteRecord) InsertSiteParams {
	return InsertSiteParams{
		ID:            core.ToPgUUID(rec.ID),
		SiteID:        core.ToPgText(rec.NearEnd.SiteID),
		SiteName:      core.ToPgText(rec.NearEnd.Name),
		Scope:         core.ToPgText(rec.Scope),
		Region:        core.ToPgText(rec.Region),
		City:          core.ToPgText(rec.City),
		NeLatitude:    core.ToPgFloat8(rec.NearEnd.Position.Latitude),
		NeLongitude:   core.ToPgFloat8(rec.NearEnd.Position.Longitude),
		FeLatitude:    core.ToPgFloat8(rec.FarEnd.Position.Latitude),
		FeLongitude:   core.ToPgFloat8(rec.FarEnd.Position.Longitude),
		Status:        core.ToPgText(rec.Status),
		AtpRequired:   core.ToPgBool(rec.ATPRequired),
		AtpType:       core.ToPgText(string(rec.ATPType)),
		WorkflowStage: core.ToPgText(rec.WorkflowStage),
	}
}

const insertSitesPrefix = `INSERT INTO sites (
  id, site_id, site_name, scope, region, city,
  ne_latitude, ne_longitude, fe_latitude, fe_longitude,
  status, atp_required, atp_type, workflow_stage,
  created_at, updated_at
) VALUES (
  `

// RenderInsert renders p as a single INSERT statement terminated by ';'.
// created_at and updated_at are left to the server via NOW().
func RenderInsert(p InsertSiteParams) string {
	values := []string{
		uuidLiteral(p.ID),
		textLiteral(p.SiteID),
		textLiteral(p.SiteName),
		textLiteral(p.Scope),
		textLiteral(p.Region),
		textLiteral(p.City),
		float8Literal(p.NeLatitude),
		float8Literal(p.NeLongitude),
		float8Literal(p.FeLatitude),
		float8Literal(p.FeLongitude),
		textLiteral(p.Status),
		boolLiteral(p.AtpRequired),
		textLiteral(p.AtpType),
		textLiteral(p.WorkflowStage),
		"NOW()",
		"NOW()",
	}

	var b strings.Builder
	b.WriteString(insertSitesPrefix)
	b.WriteString(strings.Join(values, ",\n  "))
	b.WriteString("\n);")
	return b.String()
}

// ScriptHeader describes the comment block at the top of a SQL script.
type ScriptHeader struct {
	Source      string // input file name
	GeneratedAt time.Time
	Total       int

	// SyntheticCoordinates adds a warning that the coordinates are
	// placeholders.
	SyntheticCoordinates bool
}

// WriteSQLScript writes the header comments followed by every statement in a
// single BEGIN/COMMIT block. Each statement is followed by a blank line.
func WriteSQLScript(w io.Writer, hdr ScriptHeader, statements []string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "-- Bulk Site Registration from %s\n", oneLine(hdr.Source))
	fmt.Fprintf(bw, "-- Generated: %s\n", hdr.GeneratedAt.Format(GeneratedAtLayout))
	fmt.Fprintf(bw, "-- Total sites: %d\n", hdr.Total)
	if hdr.SyntheticCoordinates {
		bw.WriteString("-- WARNING: ne_/fe_ latitude and longitude are synthetic placeholders, not surveyed positions.\n")
	}
	bw.WriteString("\nBEGIN;\n\n")

	for _, stmt := range statements {
		bw.WriteString(stmt)
		bw.WriteString("\n\n")
	}

	bw.WriteString("COMMIT;\n")
	return bw.Flush()
}

// WriteSQLFile creates or truncates path and writes the script to it.
func WriteSQLFile(path string, hdr ScriptHeader, statements []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", core.ErrWriteOutput, path, err)
	}

	if err := WriteSQLScript(f, hdr, statements); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %w", core.ErrWriteOutput, path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", core.ErrWriteOutput, path, err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Literals
// ----------------------------------------------------------------------------

// quoteText returns s as a standard SQL string literal. Single quotes are
// doubled; NUL bytes, which Postgres text cannot hold, are dropped.
func quoteText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func textLiteral(t pgtype.Text) string {
	if !t.Valid {
		return "NULL"
	}
	return quoteText(t.String)
}

func uuidLiteral(u pgtype.UUID) string {
	if !u.Valid {
		return "NULL"
	}
	return quoteText(core.PgUUIDToString(u))
}

func float8Literal(f pgtype.Float8) string {
	if !f.Valid {
		return "NULL"
	}
	return formatFloat(f.Float64)
}

func boolLiteral(b pgtype.Bool) string {
	if !b.Valid {
		return "NULL"
	}
	return strconv.FormatBool(b.Bool)
}

// formatFloat renders f in the shortest form that round-trips, keeping a
// decimal point on whole numbers ("-6.0", not "-6").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// oneLine keeps a value from breaking out of a "--" comment.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
