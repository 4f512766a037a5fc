// Package store defines the persistence interfaces for users and listings and
// the errors every implementation maps its driver errors onto, so services stay
// independent of the database in use.
package store
