// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain types to keep the domain layer free of ORM concerns;
// each model converts itself with ToDomain.
//
// The tables are owned by the enrollment system. This service only reads them.
package models
