package main

import "time"

// Screen units per terminal cell. A cell stands in for an 8x16 pixel block,
// so the canvas math in internal/canvas works unchanged on a terminal.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

const (
	headerRows = 1
	footerRows = 2 // toolbar and status line

	minCardCols   = 14
	minCardRows   = 4
	collapsedRows = 3

	editorRows = 6

	doubleClickWindow = 400 * time.Millisecond
	wheelDelta        = 100.0
	panStepCols       = 4

	exportCols = 160
	exportRows = 48
)

type editTarget int

const (
	editNone editTarget = iota
	editTitle
	editDescription
)

type cardButton int

const (
	buttonNone cardButton = iota
	buttonExpand
	buttonCollapse
	buttonDelete
)

type toolbarAction int

const (
	toolNone toolbarAction = iota
	toolAddNode
	toolZoomOut
	toolZoomIn
	toolReset
	toolTheme
)
