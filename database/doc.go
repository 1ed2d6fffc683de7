// Package database manages the Bun database connection lifecycle:
// configuration, connection pooling, health checks, migrations, and seeding.
package database
