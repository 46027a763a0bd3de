// Package textutil provides the text normalization shared by classification
// and naming.
//
// The primary use cases are:
//   - NFC normalization of file names before keyword matching
//   - Width folding of full-width digits and brackets in metadata
//   - Whitespace stripping that understands the ideographic space
//   - Sanitizing fragments that are spliced into canonical file names
package textutil
