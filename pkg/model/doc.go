// Package model defines the data structures exchanged with a Slivka server.
//
// All types mirror the JSON documents of the Slivka REST API and are plain
// immutable records: decoding creates them wholesale and nothing in this
// package mutates them afterwards.
//
// # Services and Parameters
//
// A Service describes one remotely hosted job type together with its input
// schema. Each input slot is a Parameter carrying a type tag and, depending
// on the type, a constraint struct:
//
//	integer  -> Parameter.Integer (min/max)
//	decimal  -> Parameter.Decimal (min/max, exclusive flags)
//	text     -> Parameter.Text    (minLength/maxLength)
//	flag     -> no constraints
//	choice   -> Parameter.Choice  (allowed values)
//	file     -> Parameter.File    (media type)
//
// Decimal bounds use github.com/shopspring/decimal so that values such as
// 0.1 compare exactly as the server intends.
//
// Parameter types introduced by newer servers decode without loss: the type
// tag is preserved verbatim and the raw attribute object is kept in
// Parameter.Attributes.
//
// # Jobs and Files
//
// Job is the metadata snapshot of one submitted job; its Status field holds
// the raw server string and State() normalizes it to a JobState. File is a
// pointer to a remote result file; it carries URLs and labels but never the
// content itself.
//
// # Timestamps
//
// The API formats timestamps as "2006-01-02T15:04:05" with no zone
// information; the Timestamp type handles this format and treats JSON null
// as the zero time.
package model
