package ports

// TemplateDiffer computes a line diff between two template bodies.
//
//go:generate mockgen -source=differ.go -destination=mocks/mock_differ.go -package=mocks
type TemplateDiffer interface {
	// Diff returns a unified-style listing plus the number of added and removed lines.
	Diff(deployed, synthesized string) (unified string, added, removed int)
}
