package types

// ImageRecord is one entry of GET /images and the body of GET /nextImage.
// Devices may send more fields; only the filename is interpreted here.
type ImageRecord struct {
	// example: Game (USA).iso
	Filename string `json:"filename" example:"Game (USA).iso"`
}

// DeviceStatus is the subset of the device status document the CLI renders.
type DeviceStatus struct {
	// True when the emulated drive is the primary device on its bus.
	IsPrimary bool `json:"isPrimary"`
	// Currently mounted image, if any.
	Image *ImageRecord `json:"image,omitempty"`
}
