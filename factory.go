package loom

// factory implements the teacher's factory-singleton pattern (api.go's
// `Factory`) for loom's own constructors, so callers that already know
// the idiom get one discoverable entry point instead of hunting for
// NewWorld/NewCommandBuffer individually. NewQuery/NewQuery1/2/3 stay
// package-level functions: Go methods can't carry their own type
// parameters, so a query constructor can't live on factory.
type factory struct{}

// Factory is the global factory instance for creating loom primitives.
var Factory factory

// NewWorld creates a new World.
func (f factory) NewWorld(opts ...WorldOption) *World {
	return NewWorld(opts...)
}

// NewCommandBuffer creates a new, empty CommandBuffer.
func (f factory) NewCommandBuffer() *CommandBuffer {
	return NewCommandBuffer()
}

// NewEntityBuilder creates a new, empty EntityBuilder.
func (f factory) NewEntityBuilder() *EntityBuilder {
	return NewEntityBuilder()
}

// NewSchedule creates a new, empty Schedule.
func (f factory) NewSchedule() *Schedule {
	return NewSchedule()
}
