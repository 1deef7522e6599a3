package probe

// hints maps well-known RTSP status codes to remediation text surfaced on
// failed discoveries.
var hints = map[int]string{
	401: "401 Unauthorized - check username/password and the auth scheme (Basic/Digest).",
	404: "404 Stream not found - adjust the RTSP path to match the camera model.",
	451: "451 - device/firmware error. Reduce load, reboot, or make sure RTSP is enabled.",
	500: "500 - internal device error. Check settings/firmware version and retry.",
}

// HintFor returns a human-readable hint for a status code, or "" when the
// code is unknown (including 0).
func HintFor(code int) string {
	return hints[code]
}
