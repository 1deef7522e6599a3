package discover

// PathAuto is the sentinel path setting meaning "try the vendor/generic
// candidate paths" instead of a user-fixed path.
const PathAuto = "__AUTO__"

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Request is one camera's input to a discovery run. Port, User, Password
// and Path are hints; zero values mean "unknown".
type Request struct {
	IP       string
	Port     int
	User     string
	Password string
	Path     string // explicit path or PathAuto
}

// Outcome is the result of one discovery run.
//
// On success URL is the working stream URL, and Path/User/Password/Port are
// the combination that produced it. On failure URL is empty, Path is the
// first candidate tried (diagnostic), User/Password/Port echo the request
// hints, and StatusCode carries the last RTSP code seen on the hinted port
// (0 when the device never answered the handshake).
type Outcome struct {
	Status     Status
	Vendor     string
	URL        string
	ElapsedMs  int64
	Path       string
	User       string
	Password   string
	Port       int
	StatusCode int
}
