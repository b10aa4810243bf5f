package syssched

// Starter is responsible for starting an execution.
type Starter interface {
	// Start starts an execution.
	Start()
}
