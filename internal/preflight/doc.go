// Package preflight provides readiness checks for the directories and
// external binaries a render depends on.
//
// These checks run in two contexts:
//   - The render orchestrator calls RunAll before synthesizing anything.
//     If any check fails, the render stops before spending time on TTS.
//   - The CLI "dubmix check" command displays every result, including the
//     clip cache summary from CheckClipCache.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
