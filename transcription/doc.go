// Package transcription converts spoken case descriptions to text.
//
// Provider is the backend boundary (see the whisper subpackage). Transcriber
// adds the language policy: English and Hindi are accepted as detected, and
// anything else is transcribed again with Hindi forced.
package transcription
