// Package projection maps persisted entities to their wire representations and back.
//
// Each entity declares one field table (a Schema). The table drives both directions: Read
// emits every readable field in declaration order, and Apply accepts every writable field
// from a decoded JSON object. A field is read-only, write-only or both, so a raw foreign key
// accepted on write and the human-readable value derived from it on read are always two
// separately named fields.
//
// Apply validates the whole payload before touching the target. When any field fails the
// target is left as it was and a *ValidationError lists the messages per field.
package projection
