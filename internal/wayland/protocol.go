package wayland

// Interface names as advertised by wl_registry.global.
const (
	ifaceCompositor  = "wl_compositor"
	ifaceShm         = "wl_shm"
	ifaceSeat        = "wl_seat"
	ifaceOutput      = "wl_output"
	ifaceLayerShell  = "zwlr_layer_shell_v1"
	ifaceScreencopy  = "zwlr_screencopy_manager_v1"
	ifaceCursorShape = "wp_cursor_shape_manager_v1"
	ifaceViewporter  = "wp_viewporter"
)

// Highest versions this client speaks.
const (
	maxCompositorVersion  = 4
	maxShmVersion         = 1
	maxSeatVersion        = 5
	maxOutputVersion      = 4
	maxLayerShellVersion  = 4
	maxScreencopyVersion  = 3
	maxCursorShapeVersion = 1
	maxViewporterVersion  = 1
)

// displayID is the well-known id of the wl_display singleton.
const displayID = 1

// Request opcodes.
const (
	displaySync        = 0
	displayGetRegistry = 1

	registryBind = 0

	compositorCreateSurface = 0
	compositorCreateRegion  = 1

	shmCreatePool = 0

	shmPoolCreateBuffer = 0
	shmPoolDestroy      = 1

	bufferDestroy = 0

	surfaceDestroy         = 0
	surfaceAttach          = 1
	surfaceDamage          = 2
	surfaceFrame           = 3
	surfaceSetOpaqueRegion = 4
	surfaceCommit          = 6
	surfaceSetBufferScale  = 8
	surfaceDamageBuffer    = 9

	regionDestroy = 0
	regionAdd     = 1

	seatGetPointer  = 0
	seatGetKeyboard = 1

	pointerRelease  = 1
	keyboardRelease = 0

	outputRelease = 0

	layerShellGetLayerSurface = 0

	layerSurfaceSetAnchor                = 1
	layerSurfaceSetExclusiveZone         = 2
	layerSurfaceSetKeyboardInteractivity = 4
	layerSurfaceAckConfigure             = 6
	layerSurfaceDestroy                  = 7

	screencopyCaptureOutput = 0

	frameCopy    = 0
	frameDestroy = 1

	cursorShapeGetPointer = 1

	cursorDeviceDestroy  = 0
	cursorDeviceSetShape = 1

	viewporterGetViewport = 1

	viewportDestroy        = 0
	viewportSetDestination = 2
)

// Event opcodes.
const (
	displayError    = 0
	displayDeleteID = 1

	registryGlobal       = 0
	registryGlobalRemove = 1

	callbackDone = 0

	shmFormat = 0

	bufferRelease = 0

	seatCapabilities = 0

	pointerEnter  = 0
	pointerLeave  = 1
	pointerMotion = 2
	pointerButton = 3

	keyboardKeymap = 0
	keyboardKey    = 3

	outputMode  = 1
	outputDone  = 2
	outputScale = 3
	outputName  = 4

	layerSurfaceConfigure = 0
	layerSurfaceClosed    = 1

	frameBuffer     = 0
	frameFlags      = 1
	frameReady      = 2
	frameFailed     = 3
	frameBufferDone = 6
)

// Enum values.
const (
	seatCapPointer  = 1
	seatCapKeyboard = 2

	outputModeCurrent = 1

	layerOverlay = 3

	anchorTop    = 1
	anchorBottom = 2
	anchorLeft   = 4
	anchorRight  = 8

	keyboardInteractivityExclusive = 1

	frameFlagYInvert = 1

	cursorShapeCrosshair = 8

	buttonPressed = 1
	keyPressed    = 1
)
