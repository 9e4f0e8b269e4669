// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for library and goal management:
//  1. [LibraryView] : Browse the shelved library, move books between shelves
//  2. [SearchView] : Search the catalog and add results to the library
//  3. [TrackerView] : Review the monthly goal, navigate months, complete books
//  4. [ConfirmView] : Confirm adding the eligible library to the tracker
//  5. [AddView] : Monitor real-time progress updates
//  6. [ResultView] : Display added and skipped books
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the AccountEngine, providing non-blocking status reporting during bulk adds.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
