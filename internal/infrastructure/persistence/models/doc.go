// Package models contains GORM persistence models for the village tables that feed the
// ledger and the occupancy resolver. The schema itself is owned by the SQL migrations;
// these models mirror it for reads and for in-memory test databases.
package models
