package xproto

// AtomNone is the null atom. Predefined atoms occupy ids 1..68 on every
// server; dynamically interned atoms start above them.
const AtomNone uint32 = 0

const (
	AtomPrimary uint32 = iota + 1
	AtomSecondary
	AtomArc
	AtomAtom
	AtomBitmap
	AtomCardinal
	AtomColormap
	AtomCursor
	AtomCutBuffer0
	AtomCutBuffer1
	AtomCutBuffer2
	AtomCutBuffer3
	AtomCutBuffer4
	AtomCutBuffer5
	AtomCutBuffer6
	AtomCutBuffer7
	AtomDrawable
	AtomFont
	AtomInteger
	AtomPixmap
	AtomPoint
	AtomRectangle
	AtomResourceManager
	AtomRGBColorMap
	AtomRGBBestMap
	AtomRGBBlueMap
	AtomRGBDefaultMap
	AtomRGBGrayMap
	AtomRGBGreenMap
	AtomRGBRedMap
	AtomString
	AtomVisualID
	AtomWindow
	AtomWMCommand
	AtomWMHints
	AtomWMClientMachine
	AtomWMIconName
	AtomWMIconSize
	AtomWMName
	AtomWMNormalHints
	AtomWMSizeHints
	AtomWMZoomHints
	AtomMinSpace
	AtomNormSpace
	AtomMaxSpace
	AtomEndSpace
	AtomSuperscriptX
	AtomSuperscriptY
	AtomSubscriptX
	AtomSubscriptY
	AtomUnderlinePosition
	AtomUnderlineThickness
	AtomStrikeoutAscent
	AtomStrikeoutDescent
	AtomItalicAngle
	AtomXHeight
	AtomQuadWidth
	AtomWeight
	AtomPointSize
	AtomResolution
	AtomCopyright
	AtomNotice
	AtomFontName
	AtomFamilyName
	AtomFullName
	AtomCapHeight
	AtomWMClass
	AtomWMTransientFor
)

// PredefinedAtoms lists the built-in atom names in id order, so the name
// for id n is PredefinedAtoms[n-1].
var PredefinedAtoms = []string{
	"PRIMARY",
	"SECONDARY",
	"ARC",
	"ATOM",
	"BITMAP",
	"CARDINAL",
	"COLORMAP",
	"CURSOR",
	"CUT_BUFFER0",
	"CUT_BUFFER1",
	"CUT_BUFFER2",
	"CUT_BUFFER3",
	"CUT_BUFFER4",
	"CUT_BUFFER5",
	"CUT_BUFFER6",
	"CUT_BUFFER7",
	"DRAWABLE",
	"FONT",
	"INTEGER",
	"PIXMAP",
	"POINT",
	"RECTANGLE",
	"RESOURCE_MANAGER",
	"RGB_COLOR_MAP",
	"RGB_BEST_MAP",
	"RGB_BLUE_MAP",
	"RGB_DEFAULT_MAP",
	"RGB_GRAY_MAP",
	"RGB_GREEN_MAP",
	"RGB_RED_MAP",
	"STRING",
	"VISUALID",
	"WINDOW",
	"WM_COMMAND",
	"WM_HINTS",
	"WM_CLIENT_MACHINE",
	"WM_ICON_NAME",
	"WM_ICON_SIZE",
	"WM_NAME",
	"WM_NORMAL_HINTS",
	"WM_SIZE_HINTS",
	"WM_ZOOM_HINTS",
	"MIN_SPACE",
	"NORM_SPACE",
	"MAX_SPACE",
	"END_SPACE",
	"SUPERSCRIPT_X",
	"SUPERSCRIPT_Y",
	"SUBSCRIPT_X",
	"SUBSCRIPT_Y",
	"UNDERLINE_POSITION",
	"UNDERLINE_THICKNESS",
	"STRIKEOUT_ASCENT",
	"STRIKEOUT_DESCENT",
	"ITALIC_ANGLE",
	"X_HEIGHT",
	"QUAD_WIDTH",
	"WEIGHT",
	"POINT_SIZE",
	"RESOLUTION",
	"COPYRIGHT",
	"NOTICE",
	"FONT_NAME",
	"FAMILY_NAME",
	"FULL_NAME",
	"CAP_HEIGHT",
	"WM_CLASS",
	"WM_TRANSIENT_FOR",
}
