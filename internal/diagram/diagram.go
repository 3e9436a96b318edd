// Package diagram models the structural content of a UML class diagram as
// annotated in JSON: its classes, attributes, methods, and relationships.
// Documents are decoded strictly and then reduced to sets of normalized
// element keys so that two descriptions of the same diagram compare by
// exact key equality.
package diagram

// Category partitions the structural elements of a diagram.
type Category string

const (
	Classes       Category = "classes"
	Attributes    Category = "attributes"
	Methods       Category = "methods"
	Relationships Category = "relationships"
)

// Categories lists every category in report order.
var Categories = []Category{Classes, Attributes, Methods, Relationships}

// Relationship kinds used by the annotations.
const (
	KindAssociation = "association"
	KindInheritance = "inheritance"
	KindComposition = "composition"
	KindAggregation = "aggregation"
	KindDependency  = "dependency"
	KindRealization = "realization"
)

// DirectionBidirectional marks an association whose ends are interchangeable.
const DirectionBidirectional = "bidirectional"

// EnumerationsKey is the optional top-level key holding enumerations.
const EnumerationsKey = "enumerations"

// Document is the decoded form of an annotation file. Ground truth and
// predictions share this shape. Enumerations are optional; each one scores
// as a class and its literals as untyped attributes of that class.
type Document struct {
	Classes       []string       `json:"classes"`
	Attributes    []Attribute    `json:"attributes"`
	Methods       []Method       `json:"methods"`
	Relationships []Relationship `json:"relationships"`
	Enumerations  []Enumeration  `json:"enumerations,omitempty"`
}

// Enumeration is a named set of literals.
type Enumeration struct {
	Name     string   `json:"name"`
	Literals []string `json:"literals"`
}

// Attribute is a typed field owned by a class. Type may be empty.
type Attribute struct {
	Class string `json:"class"`
	Name  string `json:"name"`
	Type  string `json:"type"`
}

// Method is an operation owned by a class, written as a UML signature
// such as "getTotal(discount: float): float".
type Method struct {
	Class     string `json:"class"`
	Signature string `json:"signature"`
}

// Relationship connects two classes. Direction and the multiplicities are
// optional annotations.
type Relationship struct {
	Source             string `json:"source"`
	Target             string `json:"target"`
	Kind               string `json:"kind"`
	Direction          string `json:"direction,omitempty"`
	MultiplicitySource string `json:"multiplicity_source,omitempty"`
	MultiplicityTarget string `json:"multiplicity_target,omitempty"`
}
