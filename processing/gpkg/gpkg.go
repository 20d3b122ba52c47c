// Package gpkg writes query results into a GeoPackage feature table.
package gpkg

import (
	"fmt"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/gpkg"

	"github.com/pdok/parkgeom/mathhelp"
	"github.com/pdok/parkgeom/processing"
)

const (
	DefaultTable    = "results"
	geometryColumn  = "geom"
	DefaultPagesize = 1000
)

// LocalSRS is the engineering (unreferenced, cartesian) system scene coordinates are in.
var LocalSRS = gpkg.SpatialReferenceSystem{
	Name:                   "local cartesian",
	ID:                     990001,
	Organization:           "NONE",
	OrganizationCoordsysID: 990001,
	Definition:             `LOCAL_CS["local cartesian",LOCAL_DATUM["scene",0],UNIT["metre",1],AXIS["X",EAST],AXIS["Y",NORTH]]`,
	Description:            "scene coordinates",
}

type column struct {
	name  string
	ctype string
	pk    bool
}

type Table struct {
	Name    string
	columns []column
	gcolumn string
	gtype   gpkg.GeometryType
	srs     gpkg.SpatialReferenceSystem
}

// ResultsTable describes the table every result is written to.
func ResultsTable(name string) Table {
	return Table{
		Name: name,
		columns: []column{
			{name: "fid", ctype: "INTEGER", pk: true},
			{name: "name", ctype: "TEXT"},
			{name: "kind", ctype: "TEXT"},
			{name: "value", ctype: "REAL"},
			{name: "ok", ctype: "INTEGER"},
			{name: geometryColumn, ctype: "GEOMETRY"},
		},
		gcolumn: geometryColumn,
		gtype:   gpkg.Geometry,
		srs:     LocalSRS,
	}
}

type Target struct {
	Table    Table
	pagesize int
	handle   *gpkg.Handle
}

// NewTarget opens (or creates) the GeoPackage file and creates the results table in it.
func NewTarget(file string, pagesize int) (*Target, error) {
	handle, err := gpkg.Open(file)
	if err != nil {
		return nil, fmt.Errorf("error opening GeoPackage %s: %w", file, err)
	}
	if pagesize < 1 {
		pagesize = DefaultPagesize
	}
	target := &Target{Table: ResultsTable(DefaultTable), pagesize: pagesize, handle: handle}
	if err = target.createTable(); err != nil {
		handle.Close()
		return nil, err
	}
	return target, nil
}

func (target *Target) Close() error {
	return target.handle.Close()
}

func (target *Target) createTable() error {
	if err := target.handle.UpdateSRS(target.Table.srs); err != nil {
		return fmt.Errorf("error adding SRS to target GeoPackage: %w", err)
	}
	return buildTable(target.handle, target.Table)
}

// WriteResults writes the results in transactions of pagesize results.
func (target *Target) WriteResults(results <-chan processing.Result) error {
	page := make([]processing.Result, 0, target.pagesize)
	for r := range results {
		page = append(page, r)
		if len(page) == target.pagesize {
			if err := target.writeResults(page); err != nil {
				return err
			}
			page = page[:0]
		}
	}
	if len(page) > 0 {
		return target.writeResults(page)
	}
	return nil
}

func (target *Target) writeResults(results []processing.Result) error {
	tx, err := target.handle.Begin()
	if err != nil {
		return fmt.Errorf("could not start a transaction: %w", err)
	}

	stmt, err := tx.Prepare(target.Table.insertSQL())
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("could not prepare a statement: %w", err)
	}
	defer stmt.Close()

	var ext *geom.Extent
	for _, r := range results {
		g := r.Geometry()
		sb, err := gpkg.NewBinary(int32(target.Table.srs.ID), g)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("could not create a binary geometry for %s: %w", r.Query.Name, err)
		}

		_, err = stmt.Exec(r.Query.Name, string(r.Query.Kind), r.Value, mathhelp.Bool2int(r.OK), sb)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("could not insert result %s: %w", r.Query.Name, err)
		}

		if ext == nil {
			ext, err = geom.NewExtentFromGeometry(g)
			if err != nil {
				ext = nil
			}
		} else {
			ext.AddGeometry(g)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit results: %w", err)
	}

	if ext == nil {
		return nil
	}
	if err = target.handle.UpdateGeometryExtent(target.Table.Name, ext); err != nil {
		return fmt.Errorf("failed to update extent: %w", err)
	}
	return nil
}

// createSQL creates a CREATE statement on the given table and column information
func (t Table) createSQL() string {
	create := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS "%v"`, t.Name)
	columnparts := make([]string, 0, len(t.columns))
	for _, column := range t.columns {
		columnpart := column.name + ` ` + column.ctype
		if column.pk {
			columnpart += ` PRIMARY KEY`
		}
		columnparts = append(columnparts, columnpart)
	}
	return create + `(` + strings.Join(columnparts, `, `) + `);`
}

// insertSQL builds the INSERT statement, the pk is left to sqlite and the geometry goes last
func (t Table) insertSQL() string {
	var csql, vsql []string
	for _, c := range t.columns {
		if c.name != t.gcolumn && !c.pk {
			csql = append(csql, c.name)
			vsql = append(vsql, `?`)
		}
	}
	csql = append(csql, t.gcolumn)
	vsql = append(vsql, `?`)
	return `INSERT INTO "` + t.Name + `"(` + strings.Join(csql, `,`) + `) VALUES(` + strings.Join(vsql, `,`) + `)`
}

// buildTable creates a given destination table with the necessary gpkg_ information
func buildTable(h *gpkg.Handle, t Table) error {
	if _, err := h.Exec(t.createSQL()); err != nil {
		return fmt.Errorf("error building table in target GeoPackage: %w", err)
	}

	err := h.AddGeometryTable(gpkg.TableDescription{
		Name:          t.Name,
		ShortName:     t.Name,
		Description:   "query results",
		GeometryField: t.gcolumn,
		GeometryType:  t.gtype,
		SRS:           int32(t.srs.ID),
		//
		Z: gpkg.Prohibited,
		M: gpkg.Prohibited,
	})
	if err != nil {
		return fmt.Errorf("error adding geometry table in target GeoPackage: %w", err)
	}
	return nil
}
