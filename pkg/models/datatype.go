package models

// DataType is the declared type of a connector or io item.
type DataType string

const (
	DataTypeInt          DataType = "INT"
	DataTypeFloat        DataType = "FLOAT"
	DataTypeString       DataType = "STRING"
	DataTypeBoolean      DataType = "BOOLEAN"
	DataTypeAny          DataType = "ANY"
	DataTypeSeries       DataType = "SERIES"
	DataTypeDataFrame    DataType = "DATAFRAME"
	DataTypeMultiTSFrame DataType = "MULTITSFRAME"
)

// seriesFamily groups the frame-like types that are interchangeable on a link.
var seriesFamily = map[DataType]bool{
	DataTypeSeries:       true,
	DataTypeDataFrame:    true,
	DataTypeMultiTSFrame: true,
}

// Compatible reports whether two connector data types may be linked:
// exact match, or both in the series family.
func (d DataType) Compatible(other DataType) bool {
	if d == other {
		return true
	}

	return seriesFamily[d] && seriesFamily[other]
}
