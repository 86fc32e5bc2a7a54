package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Argument binding errors
const (
	// ErrCodeInvalidArgument indicates arguments that do not fit a signature.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeDuplicateArgument indicates a parameter bound twice in one call.
	ErrCodeDuplicateArgument ErrorCode = "DUPLICATE_ARGUMENT"
	// ErrCodeMissingArgument indicates a required parameter with no value at call time.
	ErrCodeMissingArgument ErrorCode = "MISSING_ARGUMENT"
	// ErrCodeArgumentOverwrite indicates an attempt to rebind a node-valued argument.
	ErrCodeArgumentOverwrite ErrorCode = "ARGUMENT_OVERWRITE"
)

// Graph errors
const (
	// ErrCodeUndefinedOutput indicates an output index beyond the declared count.
	ErrCodeUndefinedOutput ErrorCode = "UNDEFINED_OUTPUT_INDEX"
	// ErrCodeOutputShape indicates a result that cannot be sliced into its outputs.
	ErrCodeOutputShape ErrorCode = "OUTPUT_SHAPE"
	// ErrCodeDisconnected indicates a declared input the outputs never reach.
	ErrCodeDisconnected ErrorCode = "DISCONNECTED_GRAPH"
	// ErrCodeCycle indicates a dependency cycle.
	ErrCodeCycle ErrorCode = "CYCLE_DETECTED"
	// ErrCodeInvalidPipeline indicates a pipeline that cannot be assembled.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodeUnknownInput indicates a run input naming no declared input node.
	ErrCodeUnknownInput ErrorCode = "UNKNOWN_INPUT"
)

// Definition and configuration errors
const (
	// ErrCodeInvalidInput indicates invalid user-supplied data.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a named resource that does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)
