// Package formdata builds multipart/form-data request bodies byte for byte.
//
// The layout is fixed rather than delegated to mime/multipart so that the
// body sent to the transcription endpoint is exactly the one the plugin has
// always produced: a "file" part named "blob" followed by a "model" text
// part, CRLF line endings, and a randomly generated boundary that is shared
// by the Content-Type header and every delimiter line.
package formdata
