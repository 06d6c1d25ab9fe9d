// Package form encodes Slivka job submissions.
//
// A Form is bound to one service schema and collects two kinds of input: the
// parameter map (scalar values, stringified on the wire) and the file map
// (binary content streamed into multipart file parts). Array parameters take
// repeated fields with the same id.
//
//	f := form.New(service)
//	f.Set("iterations", 3)
//	f.SetFile("input", "seqs.fasta", fastaReader)
//	if err := f.Validate(); err != nil {
//		var sub *form.SubmissionError
//		if errors.As(err, &sub) {
//			for _, pe := range sub.Errors {
//				fmt.Println(pe.Parameter, pe.Message)
//			}
//		}
//	}
//	contentType, body, err := f.Encode()
//
// # Validation
//
// Validate checks every field against the declared parameter set: unknown
// ids, missing required parameters, type mismatches, and constraint
// violations (bounds, lengths, choices). All problems of one attempt are
// collected into a single SubmissionError; nothing stops at the first error.
// The same SubmissionError type is produced from a server 422 response via
// ParseSubmissionError, so callers handle local and remote validation
// failures uniformly.
//
// # File content
//
// File parts accept io.Reader (streamed) or []byte (written directly).
// Anything else, strings included, is rejected during validation: implicit
// conversion of text values is how non-ASCII content gets corrupted. Remote
// files already held by the server are passed through the parameter map as a
// *model.File or its id string instead.
package form
