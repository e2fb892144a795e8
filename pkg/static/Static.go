package static

// Default Log Level
const DEFAULT_LOG_LEVEL = "info"

// Image Constants
const (
	DEFAULT_TAG    = "latest"
	FIXUP_IMAGE    = "busybox:stable"
	DEFAULT_CLIENT = "__default__"
)

// Naming Constants
const (
	FIXUP_PREFIX   = "fix"
	ALL_CONTAINERS = "all"
)

// Timeouts (seconds)
const (
	STOP_TIMEOUT = 10
	WAIT_TIMEOUT = 60
)
