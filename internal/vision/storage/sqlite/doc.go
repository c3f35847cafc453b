// Package sqlite contains the SQLite repositories of the court analysis
// system: the raw detection cache and the analysis run history.
//
// All database read/write operations belong here rather than in the layer
// packages (L1-L6), which stay free of SQL. The schema is embedded and
// applied with golang-migrate when a database is opened.
package sqlite
