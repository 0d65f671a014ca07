// Package settings implements typed, versionable configuration payloads
// for device capabilities.
//
// Each settings value is carried on the bus as a tagged record: a method
// discriminant plus a property map holding only the keys relevant to that
// method. Forward compatibility is achieved by versioning the discriminant
// set: decoders reject unrecognized keys instead of silently dropping
// them, so a payload for a newer method variant fails loudly rather than
// half-applying.
package settings
