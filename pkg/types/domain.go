package types

// Device represents a discoverable video capture device.
type Device struct {
	// Camera index as accepted by --camera.
	// example: 0
	Index int `json:"index" example:"0"`
	// Device node name.
	// example: video0
	Name string `json:"name" example:"video0"`
	// Absolute path to the device node.
	// example: /dev/video0
	Path string `json:"path" example:"/dev/video0"`
}
