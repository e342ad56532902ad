// Package logevent defines the events that flow from producer threads to the
// dataset log server, and the tagged Value variant used for nested mapping
// payloads. Values are deep-copied and validated at the log call site so the
// server never sees producer-owned memory or an unencodable kind.
package logevent
