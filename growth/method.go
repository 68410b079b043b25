package growth

import "fmt"

// Method selects how the fitting window of each group is chosen.
type Method uint8

const (
	// MethodFull fits every usable point of the group.
	MethodFull Method = iota
	// MethodExplicit fits the points inside the configured time window.
	MethodExplicit
	// MethodLOQ uses the LOQ-anchored forward search.
	MethodLOQ
	// MethodScan uses the unanchored best-scoring window scan.
	MethodScan
)

var methodNames = [...]string{
	MethodFull:     "full",
	MethodExplicit: "explicit",
	MethodLOQ:      "loq",
	MethodScan:     "scan",
}

func (m Method) valid() bool {
	return int(m) < len(methodNames)
}

// String returns the method name.
func (m Method) String() string {
	if !m.valid() {
		return fmt.Sprintf("Method(%d)", m)
	}

	return methodNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("unknown method %d", m)
	}

	return []byte(methodNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	for i, name := range methodNames {
		if name == string(text) {
			*m = Method(i)
			return nil
		}
	}

	return fmt.Errorf("unknown method %q", text)
}
