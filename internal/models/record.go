// Package models defines the SDN data shapes shared across the service.
package models

// RawRow is one data line of the upstream CSV, keyed by the header row's
// column names. A column missing from a row is simply absent from the map.
type RawRow map[string]string

// Name returns the row's name column, or "" when absent.
func (r RawRow) Name() string {
	return r["name"]
}

// Record is the public projection of a RawRow returned by the search API.
// Only a fixed subset of the upstream columns is exposed; absent columns
// become empty fields and are omitted from the JSON encoding.
type Record struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date,omitempty"`
	Countries string `json:"countries,omitempty"`
	Addresses string `json:"addresses,omitempty"`
	Sanctions string `json:"sanctions,omitempty"`
	Dataset   string `json:"dataset,omitempty"`
}

// RecordFromRow projects a RawRow onto the public Record fields.
func RecordFromRow(row RawRow) Record {
	return Record{
		ID:        row["id"],
		Name:      row["name"],
		BirthDate: row["birth_date"],
		Countries: row["countries"],
		Addresses: row["addresses"],
		Sanctions: row["sanctions"],
		Dataset:   row["dataset"],
	}
}
