package mode

// Mode selects the runtime behavior of the server.
type Mode string

const (
	Dev  Mode = "dev"
	Prod Mode = "prod"
)

var current = Dev

// Set is called once from main before anything else runs.
func Set(m Mode) {
	switch m {
	case Dev, Prod:
		current = m
	default:
		current = Dev
	}
}

func Get() Mode {
	return current
}
