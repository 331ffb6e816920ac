package kernel

// PanicInfo contains details about a panic recovered from a task step.
type PanicInfo struct {
	Task  string
	Value any
	// Count is the number of panics this task has raised so far, including this one.
	Count uint32
	Stack []byte
}
