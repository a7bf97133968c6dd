// Package synthcache memoizes synthesized clips in a SQLite database.
//
// A Store holds float samples keyed by a digest of the backend, speaker,
// voice parameters and normalized text. Wrap decorates any
// synth.Synthesizer so repeated renders of the same script skip the TTS
// collaborator entirely. The cache is a convenience; deleting the database
// only costs re-synthesis.
package synthcache
