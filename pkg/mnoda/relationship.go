package mnoda

const (
	subjectKey      = "subject"
	localSubjectKey = "local_subject"
	objectKey       = "object"
	localObjectKey  = "local_object"
	predicateKey    = "predicate"

	relationshipContext = "relationship"
)

// Relationship is a subject-predicate-object triple linking two records,
// for example "Task_22 contains Run_1024".
type Relationship struct {
	subject   IDField
	predicate string
	object    IDField
}

// NewRelationship returns a Relationship from subject to object.
func NewRelationship(subject ID, predicate string, object ID) Relationship {
	return Relationship{
		subject:   IDField{ID: subject, LocalKey: localSubjectKey, GlobalKey: subjectKey},
		predicate: predicate,
		object:    IDField{ID: object, LocalKey: localObjectKey, GlobalKey: objectKey},
	}
}

// Subject returns the ID of the record the relationship starts from.
func (r Relationship) Subject() ID { return r.subject.ID }

// Predicate returns the verb linking subject and object.
func (r Relationship) Predicate() string { return r.predicate }

// Object returns the ID of the record the relationship points to.
func (r Relationship) Object() ID { return r.object.ID }

// ParseRelationship builds a Relationship from its tree form.
func ParseRelationship(node map[string]any) (Relationship, error) {
	subject, err := parseIDField(node, localSubjectKey, subjectKey, relationshipContext)
	if err != nil {
		return Relationship{}, err
	}
	object, err := parseIDField(node, localObjectKey, objectKey, relationshipContext)
	if err != nil {
		return Relationship{}, err
	}
	predicate, err := requiredString(node, predicateKey, relationshipContext)
	if err != nil {
		return Relationship{}, err
	}
	return Relationship{subject: subject, predicate: predicate, object: object}, nil
}

// ToNode returns the tree form of r.
func (r Relationship) ToNode() map[string]any {
	node := map[string]any{predicateKey: r.predicate}
	r.subject.addTo(node)
	r.object.addTo(node)
	return node
}
