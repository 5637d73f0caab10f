package model

import (
	"encoding/json"
	"time"

	"github.com/OCAP2/annotations/internal/geo"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&ProjectRecord{},
}

// ProjectRecord is one stored annotation project.
type ProjectRecord struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name" gorm:"size:255;uniqueIndex:idx_project_name"`
	Title     string    `json:"title" gorm:"size:255"`
	CRS       int       `json:"crs"`
	// Document is the complete project XML.
	Document string `json:"document" gorm:"type:text"`
	// ExtentWKT is the map extent as a WKT polygon, for database side
	// inspection. Empty when no annotation is map anchored.
	ExtentWKT string         `json:"extentWkt" gorm:"type:text"`
	Metadata  datatypes.JSON `json:"metadata"`
}

func (*ProjectRecord) TableName() string {
	return "annotation_projects"
}

// ProjectMetadata is the content of ProjectRecord.Metadata.
type ProjectMetadata struct {
	Annotations int            `json:"annotations"`
	Types       map[string]int `json:"types"`
	// Extent is minX, minY, maxX, maxY; nil when empty.
	Extent []float64 `json:"extent,omitempty"`
}

// EncodeMetadata stores m as JSON.
func EncodeMetadata(m ProjectMetadata) (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// DecodeMetadata parses a Metadata column. Empty input gives the zero
// value.
func DecodeMetadata(data datatypes.JSON) (ProjectMetadata, error) {
	var m ProjectMetadata
	if len(data) == 0 {
		return m, nil
	}
	err := json.Unmarshal(data, &m)
	return m, err
}

// ExtentToSlice flattens a non-empty envelope to minX, minY, maxX, maxY.
func ExtentToSlice(env geom.Envelope) []float64 {
	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return nil
	}
	return []float64{lo.X, lo.Y, hi.X, hi.Y}
}

// ExtentFromSlice is the inverse of ExtentToSlice. Anything but four
// finite values gives an empty envelope.
func ExtentFromSlice(v []float64) geom.Envelope {
	if len(v) != 4 {
		return geom.Envelope{}
	}
	env, err := geo.EnvelopeOf(geom.XY{X: v[0], Y: v[1]}, geom.XY{X: v[2], Y: v[3]})
	if err != nil {
		return geom.Envelope{}
	}
	return env
}

// ExtentWKT renders a non-empty envelope as WKT.
func ExtentWKT(env geom.Envelope) string {
	if env.IsEmpty() {
		return ""
	}
	return env.AsGeometry().AsText()
}
