// Package store persists merchant storefront records: the brand row, the
// product list and the homepage section list.
//
// Every operation is scoped by merchant id and individually atomic; there is
// no cross-call transaction. Each successful write bumps the merchant's
// revision counter in the same transaction, which lets readers detect that
// another writer moved the merchant forward.
//
// # Drivers
//
//   - sqlite3 (mattn/go-sqlite3): WAL mode, synchronous=NORMAL,
//     busy_timeout=5000, foreign_keys=ON, single connection.
//   - pgx (jackc/pgx/v5/stdlib): Postgres; "?" placeholders are rebound to
//     "$n" before execution.
//
// # Deterministic ordering
//
// Products are listed by (created_at, id) and sections by
// (position, zone, id) so repeated loads produce identical documents.
package store
