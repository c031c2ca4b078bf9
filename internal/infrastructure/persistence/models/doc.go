// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; repositories convert with
// ToDomain and FromDomain.
//
// List-valued fields are stored as JSON text columns through gorm's json
// serializer, so the same schema works on PostgreSQL and SQLite.
package models
