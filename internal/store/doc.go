// Package store provides a SQLite-backed form repository.
//
// The store keeps entity forms the way a CRM customization store does: each
// form has an entity, a type code (2 main, 7 quick create), customizable and
// activation flags, a draft form_xml and the last published_xml. It
// implements forms.Repository.
//
// # Critical Patterns
//
// Logical Ordering
//   - Every write stamps a monotonic seq (updated_seq, publications.seq)
//   - Queries order by name, form_id COLLATE BINARY for deterministic output
//
// Optimistic Concurrency
//   - version is bumped on every form_xml write
//   - UpdateFormXMLIfVersion fails with forms.ErrVersionConflict when the
//     form changed since it was read
//
// Publishing
//   - Publish copies form_xml into published_xml for every form of the
//     entity that differs and appends a publications row
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
