// Package ui implements the interactive playback session using bubbletea's Elm architecture.
//
// The session is a prompt loop rather than a multi-view TUI: the user types
// either a playback command (pause, resume, stop, v N, next, back, info,
// status, help, quit) or free text, which is treated as a playlist search.
// Search results are printed as a numbered list; entering a number starts
// playback of that playlist on the managed device.
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Slow operations (API calls, playlist resolution) run as tea.Cmd functions
// and deliver their outcome as messages, keeping the prompt responsive.
//
// While the session is active all logging goes to component files under the
// configured logs directory so log lines never corrupt the rendered prompt.
package ui
