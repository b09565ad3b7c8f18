package ontology

// Root classes swept by teardown and used as parents for generated data.
const (
	ClassProperty = "http://www.w3.org/1999/02/22-rdf-syntax-ns#Property"
	ClassTree     = "http://www.tao.lu/Ontologies/TAO.rdf#Tree"
	ClassItem     = "http://www.tao.lu/Ontologies/TAOItem.rdf#Item"
	ClassList     = "http://www.tao.lu/Ontologies/TAO.rdf#List"
)

// Predicates.
const (
	PropertyLabel  = "http://www.w3.org/2000/01/rdf-schema#label"
	PropertyRange  = "http://www.w3.org/2000/01/rdf-schema#range"
	PropertyDomain = "http://www.w3.org/2000/01/rdf-schema#domain"

	PropertyMultiple = "http://www.tao.lu/Ontologies/generis.rdf#Multiple"
	PropertyWidget   = "http://www.tao.lu/datatypes/WidgetDefinitions.rdf#widget"
	PropertyChildOf  = "http://www.tao.lu/Ontologies/TAO.rdf#isChildOf"
	PropertyLevel    = "http://www.tao.lu/Ontologies/TAO.rdf#level"

	PropertyNodeOriginID = "http://www.tao.lu/Ontologies/TAO.rdf#nodeOriginId"
	PropertyGeneratedBy  = "http://www.tao.lu/Ontologies/TAO.rdf#generatedBy"
	PropertyGeneration   = "http://www.tao.lu/Ontologies/TAO.rdf#generation"
)

// Literal resources.
const (
	True  = "http://www.tao.lu/Ontologies/generis.rdf#True"
	False = "http://www.tao.lu/Ontologies/generis.rdf#False"

	WidgetCheckBox = "http://www.tao.lu/datatypes/WidgetDefinitions.rdf#CheckBox"
	WidgetRadioBox = "http://www.tao.lu/datatypes/WidgetDefinitions.rdf#RadioBox"
	WidgetTreeBox  = "http://www.tao.lu/datatypes/WidgetDefinitions.rdf#TreeBox"
)

// RootClasses lists the built-in classes and their labels, in teardown order.
var RootClasses = []Resource{
	{URI: ClassProperty, Label: "Property"},
	{URI: ClassTree, Label: "Tree"},
	{URI: ClassItem, Label: "Item"},
	{URI: ClassList, Label: "List"},
}
