package sdk

// SupportedFormatVersion is the plan format version this SDK understands.
// Item keys and plan structure are only stable within one format version.
const SupportedFormatVersion = "1"
