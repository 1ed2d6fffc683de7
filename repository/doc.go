// Package repository provides a generic, Bun-backed table repository with
// CRUD, filtering, pagination, bulk, and upsert operations.
package repository
