// Package config loads binder configuration from CUE.
//
// A configuration file holds one binding struct:
//
//	binding: {
//	    name:          "people"
//	    bidirectional: false
//	    source:        "A"
//	    propertyBind:  true
//	    strategy:      "relay"
//	}
//
// The file is unified with an embedded schema (schema.cue) that supplies
// defaults and rejects unknown fields and out-of-range values. The result is
// then checked with binding.Config.Validate, so a file that loads cleanly
// always produces a usable Binder configuration.
package config
