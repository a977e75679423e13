package connection

import "github.com/randalmurphal/wirekit/pkg/wirekit/component"

// widenings lists the one-directional type conversions allowed in addition
// to identity. object widens to every other type because object-typed ports
// carry opaque payloads the receiver is expected to interpret.
var widenings = map[component.DataType][]component.DataType{
	component.TypeNumber:  {component.TypeText},
	component.TypeBoolean: {component.TypeText},
	component.TypeText:    {component.TypeObject},
	component.TypeObject:  {component.TypeNumber, component.TypeText, component.TypeBoolean},
}

// Compatible reports whether a value of type from may flow into a port of
// type to. Every type is compatible with itself.
func Compatible(from, to component.DataType) bool {
	if from == to {
		return true
	}
	for _, t := range widenings[from] {
		if t == to {
			return true
		}
	}
	return false
}
