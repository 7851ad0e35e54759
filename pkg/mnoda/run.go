package mnoda

const (
	// RunType is the type tag of Run records.
	RunType = "run"

	applicationKey = "application"
	versionKey     = "version"
	userKey        = "user"
)

// Run is a record describing one execution of an application.
type Run struct {
	Record

	Application string
	Version     string
	User        string
}

// NewRun returns a Run with the given identity and application details.
func NewRun(id ID, application, version, user string) *Run {
	return &Run{
		Record:      *NewRecord(id, RunType),
		Application: application,
		Version:     version,
		User:        user,
	}
}

// ParseRun builds a Run from its tree form. The application is required;
// version and user default to "".
func ParseRun(node map[string]any) (*Run, error) {
	run := &Run{}
	if err := run.Record.parse(node); err != nil {
		return nil, err
	}
	var err error
	if run.Application, err = requiredString(node, applicationKey, RunType); err != nil {
		return nil, err
	}
	if run.Version, err = optionalString(node, versionKey, RunType); err != nil {
		return nil, err
	}
	if run.User, err = optionalString(node, userKey, RunType); err != nil {
		return nil, err
	}
	return run, nil
}

// ToNode returns the record's tree plus application, version and user,
// which are written even when empty.
func (r *Run) ToNode() map[string]any {
	node := r.Record.ToNode()
	node[applicationKey] = r.Application
	node[versionKey] = r.Version
	node[userKey] = r.User
	return node
}

// AddRunLoader registers ParseRun for the "run" type.
func AddRunLoader(loader *RecordLoader) {
	loader.AddTypeLoader(RunType, func(node map[string]any) (Entry, error) {
		run, err := ParseRun(node)
		if err != nil {
			return nil, err
		}
		return run, nil
	})
}
