package dag

import (
	stderrors "errors"

	"github.com/kbukum/dagpipe/errors"
)

var (
	// ErrArgumentOverwrite reports an update that would replace a node-valued argument.
	ErrArgumentOverwrite = stderrors.New("argument holds a node")
	// ErrUndefinedOutput reports an output index outside the declared output count.
	ErrUndefinedOutput = stderrors.New("undefined output index")
	// ErrOutputShape reports a multi-output result too short for its refs.
	ErrOutputShape = stderrors.New("result does not fit declared outputs")
	// ErrDisconnected reports a declared input the outputs do not depend on.
	ErrDisconnected = stderrors.New("input not connected to outputs")
	// ErrCycle reports a dependency cycle among reachable nodes.
	ErrCycle = stderrors.New("dependency cycle")
	// ErrInvalidPipeline reports a pipeline that cannot be assembled.
	ErrInvalidPipeline = stderrors.New("invalid pipeline")
	// ErrUnknownInput reports run arguments that no declared input accepts.
	ErrUnknownInput = stderrors.New("unknown pipeline input")
)

func argumentOverwrite(node, param string) error {
	return errors.Newf(errors.ErrCodeArgumentOverwrite,
		"cannot overwrite argument %q of %s: it holds a node", param, node).
		WithDetails(map[string]any{"node": node, "param": param}).
		WithCause(ErrArgumentOverwrite)
}

func nodeBinding(node, param string) error {
	return errors.Newf(errors.ErrCodeArgumentOverwrite,
		"cannot bind a node to argument %q of %s after construction", param, node).
		WithDetails(map[string]any{"node": node, "param": param}).
		WithCause(ErrArgumentOverwrite)
}

func mixedVariadic(node, param string) error {
	return errors.Newf(errors.ErrCodeInvalidArgument,
		"variadic argument %q of %s mixes nodes and literal values", param, node).
		WithDetails(map[string]any{"node": node, "param": param})
}

func undefinedOutput(node string, index, outputs int) error {
	return errors.Newf(errors.ErrCodeUndefinedOutput,
		"%s has %d outputs, index %d is undefined", node, outputs, index).
		WithDetails(map[string]any{"node": node, "index": index, "outputs": outputs}).
		WithCause(ErrUndefinedOutput)
}

func outputShape(node string, index int, reason string) error {
	return errors.Newf(errors.ErrCodeOutputShape, "cannot take output %d of %s: %s", index, node, reason).
		WithDetails(map[string]any{"node": node, "index": index}).
		WithCause(ErrOutputShape)
}

func disconnected(input string) error {
	return errors.Newf(errors.ErrCodeDisconnected, "input %s is not reachable from the outputs", input).
		WithDetail("node", input).
		WithCause(ErrDisconnected)
}

func cycle(emitted, total int) error {
	return errors.Newf(errors.ErrCodeCycle, "cycle detected, ordered %d of %d nodes", emitted, total).
		WithCause(ErrCycle)
}

func invalidPipeline(msg string) error {
	return errors.New(errors.ErrCodeInvalidPipeline, msg).WithCause(ErrInvalidPipeline)
}

func unknownInput(msg string) error {
	return errors.New(errors.ErrCodeUnknownInput, msg).WithCause(ErrUnknownInput)
}
