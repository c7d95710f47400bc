package store

import "fmt"

// Column names mirror the YouTube Charts CSV export headers, spaces
// included, so the persisted rows stay column-compatible with the raw
// extract. Metadata columns use snake_case.
const chartTable = "chart_data"

// chartColumnsDDL is the body shared by the live and staging tables.
// Rank is the primary key: one row per position per week store.
const chartColumnsDDL = `(
    "Rank"             INTEGER PRIMARY KEY,
    "Previous Rank"    INTEGER,
    "Track Name"       TEXT NOT NULL,
    "Artist Names"     TEXT NOT NULL,
    "Periods on Chart" INTEGER NOT NULL DEFAULT 0,
    "Views"            INTEGER NOT NULL DEFAULT 0,
    "Growth"           TEXT NOT NULL DEFAULT '',
    "YouTube URL"      TEXT NOT NULL DEFAULT '',
    download_date      TEXT NOT NULL,
    download_timestamp TEXT NOT NULL,
    week_id            TEXT NOT NULL
)`

// Schema creates the live table on first open of a week store.
var Schema = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s %s;", chartTable, chartColumnsDDL)

// indexDDL recreates the secondary lookups after the staging table is
// swapped in (a rename drops nothing, but the fresh table has no indexes).
var indexDDL = []string{
	fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_week ON %s(week_id)`, chartTable),
	fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_ts ON %s(download_timestamp)`, chartTable),
	fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_artist ON %s("Artist Names")`, chartTable),
}

func stagingDDL(name string) string {
	return fmt.Sprintf("CREATE TABLE %q %s;", name, chartColumnsDDL)
}
