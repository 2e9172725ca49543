package types

// Migration is a single schema change applied by db.RunMigrations.
// SQL holds both directions separated by the "-- +migrate Up" marker.
type Migration struct {
	ID     string
	SQL    string
	Prefix string
}
