package manifest

import "fmt"

// Lister enumerates registered extension ids from the manifest files.
type Lister struct {
	ProjectPath string
	UserPath    string
}

// Path returns the manifest file backing scope.
func (l Lister) Path(scope Scope) (string, error) {
	switch scope {
	case ScopeProject:
		return l.ProjectPath, nil
	case ScopeUser:
		return l.UserPath, nil
	default:
		return "", fmt.Errorf("unknown scope %q", scope)
	}
}

// Load reads the manifest for scope.
func (l Lister) Load(scope Scope) (*Document, bool, error) {
	path, err := l.Path(scope)
	if err != nil {
		return nil, false, err
	}
	return Load(path)
}

// ListExtensionIDs returns the ids registered in scope, in file order.
// A missing manifest registers nothing.
func (l Lister) ListExtensionIDs(scope Scope) ([]string, error) {
	doc, _, err := l.Load(scope)
	if err != nil {
		return nil, err
	}
	return doc.IDs, nil
}
