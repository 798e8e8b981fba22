package databases

// CounterDoc exposes counterDoc to external tests. Test-only scaffolding so
// counter_test.go can live outside the package and import databases/mocks
// without an import cycle.
type CounterDoc = counterDoc
