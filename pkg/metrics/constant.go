package metrics

const (
	Namespace           = "xcb"
	ConnectionSubsystem = "connection"
	RecordSubsystem     = "record"
)

const (
	LabelExtension = "extension"
	LabelChecked   = "checked"
	LabelEvent     = "event"
	LabelCode      = "code"
	LabelKind      = "kind"

	CoreExtension = "core"
)
