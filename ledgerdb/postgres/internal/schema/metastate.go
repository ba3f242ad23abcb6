package schema

// Names of the keys for the metastate key-value table.
const (
	SchemaMetastateKey = "schema"
)

// SchemaVersion is the version of SetupPostgresSql.
const SchemaVersion = 1

// SchemaState is the value stored under SchemaMetastateKey.
type SchemaState struct {
	Version int `codec:"version"`
}
