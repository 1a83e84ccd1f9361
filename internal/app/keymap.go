package app

// Key binding constants used in handleKey.
const (
	KeyQuit         = "q"
	KeyCtrlC        = "ctrl+c"
	KeySpace        = " "
	KeyLeft         = "left"
	KeyRight        = "right"
	KeyShiftLeft    = "shift+left"
	KeyShiftRight   = "shift+right"
	KeySplit        = "s"
	KeyInsert       = "i"
	KeyUndo         = "u"
	KeyRedo         = "r"
	KeyMarker       = "m"
	KeyDelete       = "x"
	KeyZoomIn       = "+"
	KeyZoomInAlt    = "="
	KeyZoomOut      = "-"
	KeyScrollLeft   = "h"
	KeyScrollRight  = "l"
	KeyTrackDown    = "j"
	KeyTrackUp      = "k"
	KeySnapToggle   = "S"
	KeyFollowToggle = "F"
	KeyTab          = "tab"
	KeyEscape       = "esc"
)
